package handtrack_test

import (
	"testing"

	"github.com/portalvr/portalmask/handtrack"
	"github.com/soypat/geometry/ms3"
)

func rigWithIDs() []handtrack.Joint {
	joints := make([]handtrack.Joint, 26)
	for i := range joints {
		joints[i].ID = handtrack.JointID(i)
		joints[i].Pose.Position = ms3.Vec{X: float32(i)}
	}
	return joints
}

// rigNoIDs mimics a rig whose joints carry no identifiers: all IDs read
// as palm. Identifier lookup fails and only ordinal fallback can work.
func rigNoIDs(n int) []handtrack.Joint {
	joints := make([]handtrack.Joint, n)
	for i := range joints {
		joints[i].Pose.Position = ms3.Vec{X: float32(i), Y: 1}
	}
	return joints
}

func TestFingertipByIdentifier(t *testing.T) {
	h, err := handtrack.NewSkeletonHand(handtrack.JointLenient)
	if err != nil {
		t.Fatal(err)
	}
	h.Update(true, true, rigWithIDs())
	pos, ok := h.Fingertip()
	if !ok || pos.X != float32(handtrack.JointIndexTip) {
		t.Errorf("want index tip joint by identifier, got %v ok=%v", pos, ok)
	}
	if !h.Pinching() {
		t.Error("tracked pinching hand must report pinching")
	}
}

func TestFingertipLenientFallback(t *testing.T) {
	h, _ := handtrack.NewSkeletonHand(handtrack.JointLenient)
	h.Update(true, false, rigNoIDs(26))
	pos, ok := h.Fingertip()
	if !ok || pos.X != 10 {
		t.Errorf("lenient lookup must fall back to the fixed ordinal, got %v ok=%v", pos, ok)
	}
	// Rig too short for the ordinal: unavailable even leniently.
	h.Update(true, false, rigNoIDs(5))
	if pos, ok = h.Fingertip(); ok || pos != (ms3.Vec{}) {
		t.Errorf("short rig must report the zero-vector sentinel, got %v ok=%v", pos, ok)
	}
}

func TestFingertipStrictNoFallback(t *testing.T) {
	h, err := handtrack.NewSkeletonHand(handtrack.JointStrict)
	if err != nil {
		t.Fatal(err)
	}
	h.Update(true, true, rigNoIDs(26))
	pos, ok := h.Fingertip()
	if ok || pos != (ms3.Vec{}) {
		t.Errorf("strict lookup must not guess by ordinal, got %v ok=%v", pos, ok)
	}
	// Identifier lookup still works under strict.
	h.Update(true, true, rigWithIDs())
	if pos, ok = h.Fingertip(); !ok || pos.X != float32(handtrack.JointIndexTip) {
		t.Errorf("strict identifier lookup failed, got %v ok=%v", pos, ok)
	}
}

func TestUntrackedHand(t *testing.T) {
	h, _ := handtrack.NewSkeletonHand(handtrack.JointLenient)
	h.Update(false, true, rigWithIDs())
	if h.Pinching() {
		t.Error("untracked hand must not report pinching")
	}
	if pos, ok := h.Fingertip(); ok || pos != (ms3.Vec{}) {
		t.Error("untracked hand must report the sentinel fingertip")
	}
	h.Update(true, true, nil)
	if _, ok := h.Fingertip(); ok {
		t.Error("tracked hand without pose data must report unavailable")
	}
}

func TestSampleFrame(t *testing.T) {
	l, _ := handtrack.NewSkeletonHand(handtrack.JointLenient)
	r, _ := handtrack.NewSkeletonHand(handtrack.JointLenient)
	l.Update(true, true, rigWithIDs())
	r.Update(false, false, nil)
	frame := handtrack.SampleFrame(l, r)
	if !frame.Left.Pinching || !frame.Left.FingertipOK {
		t.Errorf("left sample lost state: %+v", frame.Left)
	}
	if frame.Right.Pinching || frame.Right.FingertipOK || frame.Right.Fingertip != (ms3.Vec{}) {
		t.Errorf("right sample must be the untracked sentinel: %+v", frame.Right)
	}
}

func TestBadPolicy(t *testing.T) {
	if _, err := handtrack.NewSkeletonHand(handtrack.JointPolicy(9)); err == nil {
		t.Error("out of range policy must fail")
	}
}
