//go:build !libmpv

package playback

import "errors"

func NewBackend() (AudioBackend, error) {
	return nil, errors.New("libmpv backend is not enabled; build with -tags libmpv")
}
