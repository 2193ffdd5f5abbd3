package physics

import (
	"errors"
	"math"
	"testing"
)

func TestNewWorldWithConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"no damping", Config{Gravity: vec(0, 10), Damp: 1, AngularDamp: 1}, false},
		{"zero damp", Config{Gravity: vec(0, 10), Damp: 0, AngularDamp: 1}, true},
		{"angular damp above one", Config{Gravity: vec(0, 10), Damp: 1, AngularDamp: 1.5}, true},
		{"infinite gravity", Config{Gravity: vec(math.Inf(1), 0), Damp: 1, AngularDamp: 1}, true},
	}
	for _, tt := range tests {
		_, err := NewWorldWithConfig(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}

func TestBodyIDsAndCollections(t *testing.T) {
	w := NewWorld(DefaultGravity)
	a := w.NewCircle(vec(0, 0), 5, 1, 0.2, 0.5)
	floor := w.NewRectangle(vec(0.4, 99.6), 200.3, 19.7, 0, 0.2, 0.5)
	b := w.NewRectangle(vec(10, 0), 4, 4, 2, 0.2, 0.5)

	if a.ID != 1 || floor.ID != 2 || b.ID != 3 {
		t.Errorf("ids = %d, %d, %d, want 1, 2, 3", a.ID, floor.ID, b.ID)
	}
	if got := len(w.DynamicBodies()); got != 2 {
		t.Errorf("dynamic bodies = %d, want 2", got)
	}
	if got := len(w.StaticBodies()); got != 1 {
		t.Errorf("static bodies = %d, want 1", got)
	}
	if !floor.Static || floor.InverseMass != 0 || floor.InverseInertia != 0 {
		t.Errorf("floor is not immovable: %+v", floor)
	}
	if !floor.Center.Equals(vec(0, 100)) {
		t.Errorf("static center = %v, want rounded (0, 100)", floor.Center)
	}
	if wd, ht := floor.Size(); wd != 200 || ht != 20 {
		t.Errorf("static size = %vx%v, want 200x20", wd, ht)
	}
	if !floor.Acceleration.IsZero() {
		t.Errorf("static acceleration = %v, want zero", floor.Acceleration)
	}
	if !a.Acceleration.Equals(DefaultGravity) {
		t.Errorf("dynamic acceleration = %v, want gravity", a.Acceleration)
	}
	if got := b.Mass(); got != 2 {
		t.Errorf("mass = %v, want 2", got)
	}
}

func TestEnableDisable(t *testing.T) {
	w := NewWorld(DefaultGravity)
	a := w.NewCircle(vec(0, 0), 5, 1, 0.2, 0.5)
	floor := w.NewRectangle(vec(0, 100), 200, 20, 0, 0.2, 0.5)

	if err := w.DisableBody(a.ID); err != nil {
		t.Fatalf("DisableBody: %v", err)
	}
	if err := w.DisableBody(floor.ID); err != nil {
		t.Fatalf("DisableBody: %v", err)
	}
	if n := len(w.EnabledBodies()); n != 0 {
		t.Errorf("enabled bodies = %d, want 0", n)
	}
	if n := len(w.AllBodies()); n != 2 {
		t.Errorf("all bodies = %d, want 2", n)
	}

	w.Step(60)
	if !a.Center.Equals(vec(0, 0)) {
		t.Errorf("disabled body moved to %v", a.Center)
	}

	if err := w.EnableBody(floor.ID); err != nil {
		t.Fatalf("EnableBody: %v", err)
	}
	if err := w.EnableBody(a.ID); err != nil {
		t.Fatalf("EnableBody: %v", err)
	}
	if err := w.EnableBody(a.ID); err != nil {
		t.Errorf("enabling twice: %v", err)
	}
	if n := len(w.DynamicBodies()); n != 1 {
		t.Errorf("dynamic bodies = %d, want 1", n)
	}
	if n := len(w.StaticBodies()); n != 1 {
		t.Errorf("static bodies = %d, want 1", n)
	}

	if err := w.EnableBody(99); !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("EnableBody(99) = %v, want ErrBodyNotFound", err)
	}
	if err := w.DisableBody(99); !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("DisableBody(99) = %v, want ErrBodyNotFound", err)
	}
}

func TestRemoveBodyPrunesJoints(t *testing.T) {
	w := NewWorld(DefaultGravity)
	a := w.NewCircle(vec(0, 0), 5, 1, 0.2, 0.5)
	b := w.NewCircle(vec(30, 0), 5, 1, 0.2, 0.5)
	c := w.NewCircle(vec(60, 0), 5, 1, 0.2, 0.5)
	if _, err := w.NewJoint(a, b, DefaultRigidity, DefaultElasticity); err != nil {
		t.Fatalf("NewJoint: %v", err)
	}
	if _, err := w.NewJoint(b, c, DefaultRigidity, DefaultElasticity); err != nil {
		t.Fatalf("NewJoint: %v", err)
	}

	removed, err := w.RemoveBody(a.ID)
	if err != nil {
		t.Fatalf("RemoveBody: %v", err)
	}
	if removed != a {
		t.Errorf("RemoveBody returned %v, want body %d", removed, a.ID)
	}
	joints := w.Joints()
	if len(joints) != 1 || joints[0].A != b.ID || joints[0].B != c.ID {
		t.Errorf("joints after removal = %+v, want only %d-%d", joints, b.ID, c.ID)
	}
	if _, err := w.RemoveBody(a.ID); !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("second RemoveBody = %v, want ErrBodyNotFound", err)
	}

	if err := w.AddBody(a); err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	if err := w.AddBody(a); !errors.Is(err, ErrBodyExists) {
		t.Errorf("AddBody twice = %v, want ErrBodyExists", err)
	}
	d := w.NewCircle(vec(90, 0), 5, 1, 0.2, 0.5)
	if d.ID != 4 {
		t.Errorf("id after re-adding = %d, want 4", d.ID)
	}
}

func TestNewJointValidation(t *testing.T) {
	w := NewWorld(DefaultGravity)
	a := w.NewCircle(vec(0, 0), 5, 1, 0.2, 0.5)
	b := w.NewCircle(vec(3, 4), 5, 1, 0.2, 0.5)

	j, err := w.NewJoint(a, b, 0.5, 0.2)
	if err != nil {
		t.Fatalf("NewJoint: %v", err)
	}
	if j.Distance != 5 || j.Rigidity != 0.5 || j.Elasticity != 0.2 {
		t.Errorf("joint = %+v, want distance 5 rigidity 0.5 elasticity 0.2", j)
	}

	if _, err := w.NewJoint(a, a, 1, 0); !errors.Is(err, ErrInvalidJoint) {
		t.Errorf("self joint = %v, want ErrInvalidJoint", err)
	}

	other := NewWorld(DefaultGravity)
	stranger := other.NewCircle(vec(0, 0), 5, 1, 0.2, 0.5)
	stranger.ID = 77
	if _, err := w.NewJoint(a, stranger, 1, 0); !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("joint to foreign body = %v, want ErrBodyNotFound", err)
	}

	if !w.RemoveJoint(j) {
		t.Error("RemoveJoint did not find the joint")
	}
	if w.RemoveJoint(j) {
		t.Error("RemoveJoint removed the joint twice")
	}
}

func TestAllowPinnedRotation(t *testing.T) {
	w := NewWorld(DefaultGravity)
	bar := w.NewRectangle(vec(0, 0), 40, 10, 0, 0.2, 0.5)
	ball := w.NewCircle(vec(0, -50), 5, 1, 0.2, 0.5)

	if err := w.AllowPinnedRotation(bar.ID, 0); !errors.Is(err, ErrInvalidMass) {
		t.Errorf("zero mass = %v, want ErrInvalidMass", err)
	}
	if err := w.AllowPinnedRotation(ball.ID, 1); !errors.Is(err, ErrNotStatic) {
		t.Errorf("dynamic body = %v, want ErrNotStatic", err)
	}
	if err := w.AllowPinnedRotation(42, 1); !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("unknown body = %v, want ErrBodyNotFound", err)
	}
	if err := w.AllowPinnedRotation(bar.ID, 5); err != nil {
		t.Fatalf("AllowPinnedRotation: %v", err)
	}

	if !bar.Pinned || bar.Static || bar.InverseMass != 0.2 {
		t.Errorf("pinned bar = %+v", bar)
	}
	want := 1 / (5 * (40*40 + 10*10) / 12.0)
	if !near(bar.InverseInertia, want) {
		t.Errorf("inverse inertia = %v, want %v", bar.InverseInertia, want)
	}
	if n := len(w.StaticBodies()); n != 0 {
		t.Errorf("static bodies = %d, want 0", n)
	}
}

func TestMoveAndRotateBody(t *testing.T) {
	w := NewWorld(DefaultGravity)
	floor := w.NewRectangle(vec(0, 0), 20, 10, 0, 0.2, 0.5)

	if err := w.MoveBody(floor.ID, vec(5, 5)); err != nil {
		t.Fatalf("MoveBody: %v", err)
	}
	if !floor.Center.Equals(vec(5, 5)) {
		t.Errorf("center = %v, want (5, 5)", floor.Center)
	}
	rect := floor.Shape.(*Rectangle)
	if !rect.Vertices[0].Equals(vec(-5, 0)) {
		t.Errorf("vertex 0 = %v, want (-5, 0)", rect.Vertices[0])
	}

	if err := w.RotateBody(floor.ID, math.Pi/2); err != nil {
		t.Fatalf("RotateBody: %v", err)
	}
	if !near(floor.BoundingBox.X, 5) || !near(floor.BoundingBox.Y, 10) {
		t.Errorf("bounding box = %v, want (5, 10)", floor.BoundingBox)
	}
	if err := w.MoveBody(9, vec(1, 1)); !errors.Is(err, ErrBodyNotFound) {
		t.Errorf("MoveBody(9) = %v, want ErrBodyNotFound", err)
	}
}

func TestBoundsAndBodiesAt(t *testing.T) {
	w := NewWorld(DefaultGravity)
	if _, ok := w.Bounds(); ok {
		t.Error("empty world reported bounds")
	}
	w.NewCircle(vec(0, 0), 5, 1, 0.2, 0.5)
	box := w.NewRectangle(vec(50, 20), 20, 10, 0, 0.2, 0.5)

	bounds, ok := w.Bounds()
	if !ok {
		t.Fatal("Bounds reported no bodies")
	}
	if !bounds.Min.Equals(vec(-5, -5)) || !bounds.Max.Equals(vec(60, 25)) {
		t.Errorf("bounds = %+v, want (-5,-5)-(60,25)", bounds)
	}

	hits := w.BodiesAt(vec(55, 22))
	if len(hits) != 1 || hits[0] != box {
		t.Errorf("BodiesAt = %v, want the box", hits)
	}
	if hits := w.BodiesAt(vec(4.5, 4.5)); len(hits) != 0 {
		t.Errorf("point outside circle matched %d bodies", len(hits))
	}
}

func TestRectangleGeometryStaysConsistent(t *testing.T) {
	w := NewWorld(DefaultGravity)
	b := w.NewRectangle(vec(10, 10), 30, 10, 1, 0.2, 0.5)
	b.Rotate(0.7)
	b.Move(vec(-3, 8))
	b.Rotate(-1.9)

	rect := b.Shape.(*Rectangle)
	for i, n := range rect.FaceNormals {
		if !near(n.Magnitude(), 1) {
			t.Errorf("face normal %d has length %v", i, n.Magnitude())
		}
		if d := b.Center.Sub(rect.Vertices[i]).Dot(n); d >= 0 {
			t.Errorf("face normal %d points inward (dot %v)", i, d)
		}
	}
	var sum = vec(0, 0)
	for _, v := range rect.Vertices {
		sum = sum.Add(v)
	}
	if centroid := sum.Scale(0.25); !near(centroid.X, b.Center.X) || !near(centroid.Y, b.Center.Y) {
		t.Errorf("vertex centroid %v drifted from center %v", centroid, b.Center)
	}
	if !near(b.Angle, 0.7-1.9) {
		t.Errorf("angle = %v, want %v", b.Angle, 0.7-1.9)
	}
}
