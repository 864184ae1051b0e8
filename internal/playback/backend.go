package playback

// AudioBackend is the audio capability the manager delegates to. The manager
// exclusively owns its backend; transport actions from other components must
// go through the manager so queue and history stay consistent.
//
// Load resolves once the track is ready to play and fails on decode or IO
// errors. Position and Duration are in seconds; Duration reports 0 until the
// backend knows it. Callbacks fire from the backend's own goroutine and must
// only re-enter the manager through its public methods.
type AudioBackend interface {
	Load(path string) error
	Play() error
	Pause() error
	Stop() error
	Seek(seconds float64) error
	SetVolume(level int) error
	Position() (float64, error)
	Duration() (float64, error)
	SetOnEnded(callback func())
	SetOnTimeUpdate(callback func(position float64))
	SetOnError(callback func(err error))
	Close() error
}
