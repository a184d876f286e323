// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "path/filepath"

// DestinationChooser decides where the archive is written. It is offered the
// default archive name and returns the full path to use. An empty path with
// a nil error means the operator declined to pick one.
type DestinationChooser interface {
	ChooseDestination(defaultName string) (string, error)
}

// DestinationFunc adapts a function to DestinationChooser.
type DestinationFunc func(defaultName string) (string, error)

// ChooseDestination calls f.
func (f DestinationFunc) ChooseDestination(defaultName string) (string, error) {
	return f(defaultName)
}

// FixedDestination always answers path, ignoring the default name.
func FixedDestination(path string) DestinationChooser {
	return DestinationFunc(func(string) (string, error) { return path, nil })
}

// InDirectory places the default archive name in dir.
func InDirectory(dir string) DestinationChooser {
	return DestinationFunc(func(name string) (string, error) {
		return filepath.Join(dir, name), nil
	})
}
