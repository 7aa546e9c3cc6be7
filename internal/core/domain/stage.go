package domain

// StageName identifies one discrete operation in an item's processing
// sequence.
type StageName string

const (
	StageFetch     StageName = "fetch"
	StageTransform StageName = "transform"
	StagePersist   StageName = "persist"
)

// Stages lists the processing sequence in execution order.
var Stages = []StageName{StageFetch, StageTransform, StagePersist}
