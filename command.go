package mediaremote

// CommandKind is the closed set of transport commands the framework
// understands. The numeric values are the native command identifiers and
// must not be reordered.
type CommandKind int32

const (
	CommandPlay                 CommandKind = 0
	CommandPause                CommandKind = 1
	CommandTogglePlayPause      CommandKind = 2
	CommandStop                 CommandKind = 3
	CommandNextTrack            CommandKind = 4
	CommandPreviousTrack        CommandKind = 5
	CommandToggleShuffle        CommandKind = 6
	CommandToggleRepeat         CommandKind = 7
	CommandStartForwardSeek     CommandKind = 8
	CommandEndForwardSeek       CommandKind = 9
	CommandStartBackwardSeek    CommandKind = 10
	CommandEndBackwardSeek      CommandKind = 11
	CommandGoBackFifteenSeconds CommandKind = 12
	CommandSkipFifteenSeconds   CommandKind = 13

	// Sentinels for the two commands that carry a numeric payload and
	// route to dedicated framework entry points instead of the generic
	// send call.
	commandSetElapsedTime   CommandKind = -1
	commandSetPlaybackSpeed CommandKind = -2
)

func (k CommandKind) String() string {
	switch k {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandTogglePlayPause:
		return "toggle-play-pause"
	case CommandStop:
		return "stop"
	case CommandNextTrack:
		return "next-track"
	case CommandPreviousTrack:
		return "previous-track"
	case CommandToggleShuffle:
		return "toggle-shuffle"
	case CommandToggleRepeat:
		return "toggle-repeat"
	case CommandStartForwardSeek:
		return "start-forward-seek"
	case CommandEndForwardSeek:
		return "end-forward-seek"
	case CommandStartBackwardSeek:
		return "start-backward-seek"
	case CommandEndBackwardSeek:
		return "end-backward-seek"
	case CommandGoBackFifteenSeconds:
		return "go-back-fifteen-seconds"
	case CommandSkipFifteenSeconds:
		return "skip-fifteen-seconds"
	case commandSetElapsedTime:
		return "set-elapsed-time"
	case commandSetPlaybackSpeed:
		return "set-playback-speed"
	default:
		return "unknown"
	}
}

// Command is a single playback command. Construct values with Cmd,
// SetElapsedTime or SetPlaybackSpeed; the zero value is CommandPlay with no
// payload.
type Command struct {
	kind    CommandKind
	payload float64
}

// Cmd wraps a plain CommandKind with no payload.
func Cmd(kind CommandKind) Command { return Command{kind: kind} }

// SetElapsedTime builds the command that seeks to an absolute position in
// seconds. The value is passed through unvalidated; out-of-range positions
// are left to the framework, which may treat them as a no-op.
func SetElapsedTime(seconds float64) Command {
	return Command{kind: commandSetElapsedTime, payload: seconds}
}

// SetPlaybackSpeed builds the command that changes the playback rate
// multiplier. As with SetElapsedTime, the value is not validated here.
func SetPlaybackSpeed(multiplier int) Command {
	return Command{kind: commandSetPlaybackSpeed, payload: float64(multiplier)}
}

// Kind reports which command this is.
func (c Command) Kind() CommandKind { return c.kind }

// Send dispatches the command to the framework and returns its boolean
// acknowledgement verbatim. If no application currently owns the media
// session the OS may launch the default media player as a side effect of a
// transport command; that behavior belongs to the framework and is not
// suppressed here.
func (r *Remote) Send(c Command) bool {
	switch c.kind {
	case commandSetElapsedTime:
		r.fw.setElapsedTime(c.payload)
		return true
	case commandSetPlaybackSpeed:
		r.fw.setPlaybackSpeed(int32(c.payload))
		return true
	default:
		// The native call takes a userInfo argument which is always nil
		// here, matching observed framework usage.
		return r.fw.sendCommand(int32(c.kind))
	}
}
