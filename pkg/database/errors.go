package database

import "errors"

// ErrNotReady indicates the database has been closed or never answered a ping.
var ErrNotReady = errors.New("database not ready")
