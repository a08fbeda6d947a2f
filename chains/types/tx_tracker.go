package types

import "github.com/ethereum/go-ethereum/common"

type TrackResult int

const (
	TrackResultConfirmed TrackResult = iota
	TrackResultFailure
	TrackResultTimeout
)

// Events emitted by the confirmation tracker.
const (
	EventPending   = "pending"
	EventCompleted = "completed"
	EventTimeout   = "timeout"
)

// PendingUpdate is the payload of EventPending. Hash is the transaction whose addition or removal
// changed the pending collection.
type PendingUpdate struct {
	Hash    common.Hash
	Pending []common.Hash
}

// TrackUpdate is the payload of EventCompleted and EventTimeout.
type TrackUpdate struct {
	Hash        common.Hash
	BlockHeight uint64
	Result      TrackResult
	Pending     []common.Hash
}
