package service

const (
	ImageSize = 224
	Channels  = 3
)

// ChannelMeans are the per-channel means in BGR order the network was trained with.
var ChannelMeans = [Channels]float32{104, 117, 123}

// Tensor is a dense float32 blob in NCHW layout.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// ScoreVector holds one raw score per class index, in network output order.
type ScoreVector []float32

type Prediction struct {
	Index int     `json:"index" msgpack:"index"`
	Label string  `json:"label" msgpack:"label"`
	Score float32 `json:"score" msgpack:"score"`
}

// RankedResult is ordered by descending score, ties by ascending index.
type RankedResult []Prediction

// Engine loads a network definition and its weights into a runnable Model.
type Engine interface {
	Load(definitionPath, weightsPath string) (Model, error)
}

// Model is a loaded network. Infer must not keep state between calls and
// is not safe for concurrent use.
type Model interface {
	Infer(t *Tensor) (ScoreVector, error)
	// Classes reports the length of the score vector Infer returns.
	Classes() int
	Close() error
}
