package config

// Application constants
const (
	AppName = "econlab"

	// Bounds of the interactive synthetic-data generator.
	SyntheticMinSamples  = 10
	SyntheticMaxSamples  = 500
	SyntheticMaxNoise    = 2.0
	SyntheticMaxFeatures = 5

	// MaxUploadBytes caps dataset uploads.
	MaxUploadBytes = 10 << 20
)
