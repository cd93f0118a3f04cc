package constants

import "os"

const (
	OutputPathEnv = "OUTPUT_PATH"
	ListenAddrEnv = "LISTEN_ADDR"
	AWSRegionEnv  = "AWS_REGION"
)

func GetOutputDir() string {
	path := os.Getenv(OutputPathEnv)
	if path != "" {
		return path
	}
	return "./out"
}

func GetListenAddr() string {
	addr := os.Getenv(ListenAddrEnv)
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetAWSRegion() string {
	region := os.Getenv(AWSRegionEnv)
	if region != "" {
		return region
	}
	return "us-east-1"
}

// MIDI ticks in one beat (quarter note). Every duration in the input grammar
// is resolved against this.
const TicksPerBeat = 24

// General MIDI harpsichord (0-based program 6).
const DefaultProgram = 6

const DefaultVelocity = 127

const NumChannels = 16

// The tempo meta event carries microseconds per beat in 24 bits.
const MaxMicrosecondsPerBeat = 1<<24 - 1
