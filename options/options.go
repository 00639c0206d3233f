package options

// Options holds the run configuration assembled from command-line flags.
type Options struct {
	Input      *string // video input (file path or camera URL); empty selects the test pattern
	DepthInput *string // optional matching gray8 depth stream
	Width      *int
	Height     *int
	Stereo     *bool
	ParamsFile *string // JSON file with the simulation parameters, watched for changes
}
