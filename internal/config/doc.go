// Package config provides configuration structures and utilities for the
// top-sites analyzer. It defines scan options, source credentials, and
// report output preferences.
package config
