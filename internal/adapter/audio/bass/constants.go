// Package bass provides a BASS audio library adapter implementing the Transport interface.
// This package wraps the Un4seen BASS library (https://www.un4seen.com) for audio playback.
package bass

/*
#include "bass.h"
*/
import "C"

// InitFlags represents BASS library initialization flags.
type InitFlags int

const (
	InitFlag16BITS InitFlags = C.BASS_DEVICE_16BITS // limit output to 16 bit
	InitFlagDMIX   InitFlags = C.BASS_DEVICE_DMIX   // use ALSA "dmix" plugin
	InitFlagFREQ   InitFlags = C.BASS_DEVICE_FREQ   // set device sample rate
	InitFlagSTEREO InitFlags = C.BASS_DEVICE_STEREO // limit output to stereo
)

// NoSoundDevice plays silently in real time; useful where no output hardware exists.
const NoSoundDevice = 0

// Stream creation flags
const (
	streamPreScan = C.BASS_STREAM_PRESCAN // scan the whole buffer so length and seeking are exact
)

// Channel attributes used by the transport
const (
	attribVolume = C.BASS_ATTRIB_VOL
)

// channelState mirrors BASS_ChannelIsActive.
type channelState int

const (
	channelStopped channelState = iota
	channelPlaying
	channelPaused
	channelStalled
)

func (s channelState) String() string {
	switch s {
	case channelPlaying:
		return "playing"
	case channelPaused:
		return "paused"
	case channelStalled:
		return "stalled"
	default:
		return "stopped"
	}
}

// ErrorCode represents BASS library error codes.
type ErrorCode int

const (
	ErrorOK       ErrorCode = C.BASS_OK             // all is OK
	ErrorMEM      ErrorCode = C.BASS_ERROR_MEM      // memory error
	ErrorFILEOPEN ErrorCode = C.BASS_ERROR_FILEOPEN // can't open the file
	ErrorDRIVER   ErrorCode = C.BASS_ERROR_DRIVER   // can't find a free/valid driver
	ErrorBUFLOST  ErrorCode = C.BASS_ERROR_BUFLOST  // the sample buffer was lost
	ErrorHANDLE   ErrorCode = C.BASS_ERROR_HANDLE   // invalid handle
	ErrorFORMAT   ErrorCode = C.BASS_ERROR_FORMAT   // unsupported sample format
	ErrorPOSITION ErrorCode = C.BASS_ERROR_POSITION // invalid position
	ErrorINIT     ErrorCode = C.BASS_ERROR_INIT     // BASS_Init has not been successfully called
	ErrorSTART    ErrorCode = C.BASS_ERROR_START    // BASS_Start has not been successfully called
	ErrorSSL      ErrorCode = C.BASS_ERROR_SSL      // SSL/HTTPS support isn't available
	ErrorALREADY  ErrorCode = C.BASS_ERROR_ALREADY  // already initialized/paused/whatever
	ErrorNOCHAN   ErrorCode = C.BASS_ERROR_NOCHAN   // can't get a free channel
	ErrorILLTYPE  ErrorCode = C.BASS_ERROR_ILLTYPE  // an illegal type was specified
	ErrorILLPARAM ErrorCode = C.BASS_ERROR_ILLPARAM // an illegal parameter was specified
	ErrorNO3D     ErrorCode = C.BASS_ERROR_NO3D     // no 3D support
	ErrorNOEAX    ErrorCode = C.BASS_ERROR_NOEAX    // no EAX support
	ErrorDEVICE   ErrorCode = C.BASS_ERROR_DEVICE   // illegal device number
	ErrorNOPLAY   ErrorCode = C.BASS_ERROR_NOPLAY   // not playing
	ErrorFREQ     ErrorCode = C.BASS_ERROR_FREQ     // illegal sample rate
	ErrorNOTFILE  ErrorCode = C.BASS_ERROR_NOTFILE  // the stream is not a file stream
	ErrorNOHW     ErrorCode = C.BASS_ERROR_NOHW     // no hardware voices available
	ErrorEMPTY    ErrorCode = C.BASS_ERROR_EMPTY    // the MOD music has no sequence data
	ErrorNONET    ErrorCode = C.BASS_ERROR_NONET    // no internet connection could be opened
	ErrorCREATE   ErrorCode = C.BASS_ERROR_CREATE   // couldn't create the file
	ErrorNOFX     ErrorCode = C.BASS_ERROR_NOFX     // effects are not available
	ErrorNOTAVAIL ErrorCode = C.BASS_ERROR_NOTAVAIL // requested data is not available
	ErrorDECODE   ErrorCode = C.BASS_ERROR_DECODE   // the channel is/isn't a "decoding channel"
	ErrorDX       ErrorCode = C.BASS_ERROR_DX       // a sufficient DirectX version is not installed
	ErrorTIMEOUT  ErrorCode = C.BASS_ERROR_TIMEOUT  // connection timed out
	ErrorFILEFORM ErrorCode = C.BASS_ERROR_FILEFORM // unsupported file format
	ErrorSPEAKER  ErrorCode = C.BASS_ERROR_SPEAKER  // unavailable speaker
	ErrorVERSION  ErrorCode = C.BASS_ERROR_VERSION  // invalid BASS version (used by add-ons)
	ErrorCODEC    ErrorCode = C.BASS_ERROR_CODEC    // codec is not available/supported
	ErrorENDED    ErrorCode = C.BASS_ERROR_ENDED    // the channel/file has ended
	ErrorBUSY     ErrorCode = C.BASS_ERROR_BUSY     // the device is busy
	ErrorUNKNOWN  ErrorCode = C.BASS_ERROR_UNKNOWN  // some other mystery problem
)

// errorCodeToMessage maps BASS error codes to human-readable messages.
func errorCodeToMessage(code ErrorCode) string {
	messages := map[ErrorCode]string{
		ErrorOK:       "all is OK",
		ErrorMEM:      "memory error",
		ErrorFILEOPEN: "can't open the file",
		ErrorDRIVER:   "can't find a free/valid driver",
		ErrorBUFLOST:  "the sample buffer was lost",
		ErrorHANDLE:   "invalid handle",
		ErrorFORMAT:   "unsupported sample format",
		ErrorPOSITION: "invalid position",
		ErrorINIT:     "BASS_Init has not been successfully called",
		ErrorSTART:    "BASS_Start has not been successfully called",
		ErrorSSL:      "SSL/HTTPS support isn't available",
		ErrorALREADY:  "already initialized/paused/whatever",
		ErrorNOCHAN:   "can't get a free channel",
		ErrorILLTYPE:  "an illegal type was specified",
		ErrorILLPARAM: "an illegal parameter was specified",
		ErrorNO3D:     "no 3D support",
		ErrorNOEAX:    "no EAX support",
		ErrorDEVICE:   "illegal device number",
		ErrorNOPLAY:   "not playing",
		ErrorFREQ:     "illegal sample rate",
		ErrorNOTFILE:  "the stream is not a file stream",
		ErrorNOHW:     "no hardware voices available",
		ErrorEMPTY:    "the MOD music has no sequence data",
		ErrorNONET:    "no internet connection could be opened",
		ErrorCREATE:   "couldn't create the file",
		ErrorNOFX:     "effects are not available",
		ErrorNOTAVAIL: "requested data is not available",
		ErrorDECODE:   "the channel is/isn't a 'decoding channel'",
		ErrorDX:       "a sufficient DirectX version is not installed",
		ErrorTIMEOUT:  "connection timed out",
		ErrorFILEFORM: "unsupported file format",
		ErrorSPEAKER:  "unavailable speaker",
		ErrorVERSION:  "invalid BASS version (used by add-ons)",
		ErrorCODEC:    "codec is not available/supported",
		ErrorENDED:    "the channel/file has ended",
		ErrorBUSY:     "the device is busy",
		ErrorUNKNOWN:  "some other mystery problem",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
