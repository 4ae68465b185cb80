package system

import "errors"

var (
	errNoSpawner = errors.New("system: no prefab spawner configured")
)
