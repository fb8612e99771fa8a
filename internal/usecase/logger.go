package usecase

import "github.com/labstack/gommon/log"

// nilならレベルOFFのロガーを作る
func loggerOrDiscard(l *log.Logger, prefix string) *log.Logger {
	if l != nil {
		return l
	}
	l = log.New(prefix)
	l.SetLevel(log.OFF)
	return l
}
