// Package handtrack defines the per-frame hand input contract consumed
// by the portal tracker and wipe brush: pinch gesture state and index
// fingertip world position for two independent hands.
//
// The package does not talk to tracking hardware. The host feeds it
// per-frame skeletal snapshots; gesture consumers poll the resulting
// samples once per tick. Polling is the contract here: no finer-grained
// event source is guaranteed to exist on the tracking side.
package handtrack

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
)

// JointID identifies a skeletal joint independent of its position in
// the rig's joint array. Values follow the OpenXR hand joint ordering.
type JointID uint8

const (
	JointPalm          JointID = 0
	JointWrist         JointID = 1
	JointThumbTip      JointID = 5
	JointIndexProximal JointID = 7
	JointIndexDistal   JointID = 9
	JointIndexTip      JointID = 10
)

// indexTipOrdinal is the array position of the index fingertip in rigs
// following the OpenXR joint ordering. Used only by lenient lookup when
// the rig carries no joint identifiers.
const indexTipOrdinal = 10

// JointPolicy selects how fingertip lookup treats a skeleton whose
// joints cannot be resolved by identifier.
type JointPolicy uint8

const (
	// JointLenient falls back to the fixed OpenXR array ordinal when
	// identifier lookup fails. Wrong-joint results are possible if the
	// rig's ordering differs; this matches legacy tracking runtimes.
	JointLenient JointPolicy = iota
	// JointStrict treats a failed identifier lookup as "unavailable"
	// instead of guessing by ordinal.
	JointStrict
)

func (p JointPolicy) String() string {
	switch p {
	case JointLenient:
		return "lenient"
	case JointStrict:
		return "strict"
	}
	return fmt.Sprintf("JointPolicy(%d)", uint8(p))
}

// ErrBadPolicy reports an out-of-range JointPolicy at wiring time.
var ErrBadPolicy = errors.New("handtrack: invalid joint policy")

// Pose is a joint's world-space transform.
type Pose struct {
	Position ms3.Vec
	// Orientation as a unit quaternion. Fingertip consumers only read
	// Position; orientation is carried for completeness of the input
	// contract.
	Orientation ms3.Quat
}

// Joint pairs a pose with its stable identifier.
type Joint struct {
	ID   JointID
	Pose Pose
}

// Hand is the gesture sampler interface: one implementation per
// physical hand. Pinching is false whenever the hand is untracked.
// Fingertip reports ok=false, and the zero vector, when no pose data or
// the required joint is available — the zero vector is a sentinel for
// "unavailable", never a valid fingertip position.
type Hand interface {
	Pinching() bool
	Fingertip() (pos ms3.Vec, ok bool)
}

// SkeletonHand is a Hand backed by per-frame skeletal snapshots pushed
// by the host tracking subsystem.
type SkeletonHand struct {
	policy   JointPolicy
	tracked  bool
	pinching bool
	joints   []Joint
}

// NewSkeletonHand returns a hand with the given joint lookup policy.
func NewSkeletonHand(policy JointPolicy) (*SkeletonHand, error) {
	if policy > JointStrict {
		return nil, ErrBadPolicy
	}
	return &SkeletonHand{policy: policy}, nil
}

// Update replaces the hand's snapshot for the current frame. joints may
// be nil when the hand is untracked; the slice is retained, not copied,
// so the caller must not mutate it until the next Update.
func (h *SkeletonHand) Update(tracked, pinching bool, joints []Joint) {
	h.tracked = tracked
	h.pinching = pinching && tracked
	h.joints = joints
}

// Pinching implements [Hand].
func (h *SkeletonHand) Pinching() bool { return h.pinching }

// Fingertip implements [Hand]. Lookup is by joint identifier first; the
// lenient policy then tries the fixed array ordinal, the strict policy
// reports unavailable.
func (h *SkeletonHand) Fingertip() (ms3.Vec, bool) {
	if !h.tracked || len(h.joints) == 0 {
		return ms3.Vec{}, false
	}
	for i := range h.joints {
		if h.joints[i].ID == JointIndexTip {
			return h.joints[i].Pose.Position, true
		}
	}
	if h.policy == JointLenient && len(h.joints) > indexTipOrdinal {
		return h.joints[indexTipOrdinal].Pose.Position, true
	}
	return ms3.Vec{}, false
}

// Sample is the ephemeral per-frame value a consumer reads from a hand.
// Not persisted across frames.
type Sample struct {
	Pinching  bool
	Fingertip ms3.Vec
	// FingertipOK distinguishes a valid fingertip from the zero-vector
	// sentinel.
	FingertipOK bool
}

// TakeSample polls a hand once, pairing its gesture state with its
// fingertip.
func TakeSample(h Hand) Sample {
	s := Sample{Pinching: h.Pinching()}
	s.Fingertip, s.FingertipOK = h.Fingertip()
	return s
}

// Frame is the snapshot of both hands for one tick. Both samples are
// taken as of the same frame so consumers see a consistent pair even
// though the two tracking streams update independently.
type Frame struct {
	Left, Right Sample
}

// SampleFrame polls both hands for the current tick.
func SampleFrame(left, right Hand) Frame {
	return Frame{Left: TakeSample(left), Right: TakeSample(right)}
}
