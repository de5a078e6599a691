package image

import "context"

const (
	PositiveSuffix = ", professional photography, photorealistic, 8k uhd, high detail, masterpiece, realistic lighting, natural colors"
	NegativePrompt = "cartoon, anime, illustration, painting, drawing, artificial, rendered, low quality, blurry, grainy"

	InferenceSteps = 75
	GuidanceScale  = 9
	Width          = 1024
	Height         = 1024
)

type Parameters struct {
	NegativePrompt    string  `json:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
}

type Params struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

// NewParams appends the fixed style qualifiers to prompt. The prompt is used as typed, untrimmed.
func NewParams(prompt string) Params {
	return Params{
		Inputs: prompt + PositiveSuffix,
		Parameters: Parameters{
			NegativePrompt:    NegativePrompt,
			NumInferenceSteps: InferenceSteps,
			GuidanceScale:     GuidanceScale,
			Width:             Width,
			Height:            Height,
		},
	}
}

type Image struct {
	Data        []byte
	ContentType string
}

type Generator interface {
	Generate(context.Context, Params) (Image, error)
}
