// Package bass provides low-level CGO bindings to the BASS audio library.
// These functions are internal and should not be used directly - use the Transport instead.
package bass

/*
#include <stdlib.h>
#include "bass.h"
*/
import "C"
import (
	"time"
	"unsafe"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// bassInit initializes the BASS library.
func bassInit(device int, freq int, flags InitFlags) error {
	if C.BASS_Init(C.int(device), C.DWORD(freq), C.DWORD(flags), nil, nil) == 0 {
		return createBassError("initialize", C.BASS_ErrorGetCode())
	}
	return nil
}

// bassFree releases the BASS library resources.
func bassFree() error {
	if C.BASS_Free() == 0 {
		return createBassError("free", C.BASS_ErrorGetCode())
	}
	return nil
}

// bassStreamCreateMemory copies audio into C memory and opens a stream over it.
// The returned memory must outlive the stream; release both with bassStreamRelease.
func bassStreamCreateMemory(audio []byte, flags int) (int64, unsafe.Pointer, error) {
	mem := C.CBytes(audio)

	handle := C.BASS_StreamCreateFile(1, mem, 0, C.QWORD(len(audio)), C.DWORD(flags))
	if handle == 0 {
		code := C.BASS_ErrorGetCode()
		C.free(mem)
		return 0, nil, createBassError("load", code)
	}
	return int64(handle), mem, nil
}

// bassStreamRelease frees a stream and then the memory it was reading.
func bassStreamRelease(handle int64, mem unsafe.Pointer) {
	if handle != 0 {
		C.BASS_StreamFree(C.DWORD(handle))
	}
	if mem != nil {
		C.free(mem)
	}
}

// bassChannelPlay starts or resumes playback.
func bassChannelPlay(handle int64, restart bool) error {
	restartVal := C.int(0)
	if restart {
		restartVal = 1
	}

	if C.BASS_ChannelPlay(C.DWORD(handle), restartVal) == 0 {
		return createBassError("play", C.BASS_ErrorGetCode())
	}
	return nil
}

// bassChannelPause pauses playback. Pausing a channel that is not playing is not an error.
func bassChannelPause(handle int64) error {
	if C.BASS_ChannelPause(C.DWORD(handle)) == 0 {
		code := C.BASS_ErrorGetCode()
		if ErrorCode(code) == ErrorALREADY || ErrorCode(code) == ErrorNOPLAY {
			return nil
		}
		return createBassError("pause", code)
	}
	return nil
}

// bassChannelIsActive returns the channel state.
func bassChannelIsActive(handle int64) channelState {
	switch C.BASS_ChannelIsActive(C.DWORD(handle)) {
	case C.BASS_ACTIVE_PLAYING:
		return channelPlaying
	case C.BASS_ACTIVE_PAUSED:
		return channelPaused
	case C.BASS_ACTIVE_STALLED:
		return channelStalled
	default:
		return channelStopped
	}
}

// bassChannelGetLength returns the channel length in bytes.
func bassChannelGetLength(handle int64) uint64 {
	return uint64(C.BASS_ChannelGetLength(C.DWORD(handle), C.BASS_POS_BYTE))
}

// bassChannelGetPosition returns the current position in bytes.
func bassChannelGetPosition(handle int64) uint64 {
	return uint64(C.BASS_ChannelGetPosition(C.DWORD(handle), C.BASS_POS_BYTE))
}

// bassChannelSetPosition sets the position in bytes.
func bassChannelSetPosition(handle int64, pos uint64) error {
	if C.BASS_ChannelSetPosition(C.DWORD(handle), C.QWORD(pos), C.BASS_POS_BYTE) == 0 {
		return createBassError("seek", C.BASS_ErrorGetCode())
	}
	return nil
}

// bassChannelBytes2Seconds converts bytes to a duration.
func bassChannelBytes2Seconds(handle int64, pos uint64) time.Duration {
	seconds := C.BASS_ChannelBytes2Seconds(C.DWORD(handle), C.QWORD(pos))
	return time.Duration(float64(seconds) * float64(time.Second))
}

// bassChannelSetVolume sets the channel volume (0.0 to 1.0).
func bassChannelSetVolume(handle int64, volume float32) error {
	if C.BASS_ChannelSetAttribute(C.DWORD(handle), C.DWORD(attribVolume), C.float(volume)) == 0 {
		return createBassError("set_volume", C.BASS_ErrorGetCode())
	}
	return nil
}

// createBassError creates a TransportError from a BASS error code.
func createBassError(op string, code C.int) error {
	errorCode := ErrorCode(code)
	return domain.NewTransportError(op, int(code), errorCodeToMessage(errorCode), nil)
}

