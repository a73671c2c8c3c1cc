package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// SetupLogger troca a saída para o console legível quando debug estiver ativo.
func SetupLogger(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}).
			With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func LogDebug(format string, v ...interface{}) {
	logger.Debug().Caller(1).Msg(fmt.Sprintf(format, v...))
}

func LogInfo(format string, v ...interface{}) {
	logger.Info().Msg(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...interface{}) {
	logger.Error().Caller(1).Msg(fmt.Sprintf(format, v...))
}

func LogWarning(format string, v ...interface{}) {
	logger.Warn().Caller(1).Msg(fmt.Sprintf(format, v...))
}

func TimeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	LogDebug("%s levou %s", name, elapsed)
}
