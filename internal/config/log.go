package config

import (
	"strings"

	"github.com/labstack/gommon/log"
)

// LOG_LEVELの文字列をgommonのレベルにする。不明ならWARN
func ParseLogLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "info":
		return log.INFO
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.WARN
	}
}
