// Package logging 构造 zerolog logger；日志只写 stderr，stdout 留给交互输出。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	// Level: debug / info / warn / error；为空或无法识别时为 info。
	Level string
	// Format: console / json；为空时为 console。
	Format string
	// Output 为 nil 时使用 os.Stderr。
	Output io.Writer
}

func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !isTTY(out)}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
