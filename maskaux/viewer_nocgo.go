//go:build tinygo || !cgo

package maskaux

import "errors"

func ui(sys *System, cfg ViewerConfig) error {
	return errors.New("require cgo for viewer rendering")
}
