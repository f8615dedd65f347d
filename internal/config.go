package internal

import (
	"fmt"
	"strings"
	"time"

	"chatline/domain"
)

type Config struct {
	Mode              string        `env:"MODE,required=true"`
	Host              string        `env:"HOST,required=true"`
	Port              int           `env:"PORT,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	AuthSecretKey     string        `env:"AUTH_SECRET_KEY,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,required=true"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,required=true"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,required=true"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,required=true"`
}

// DeliveryMode parses the MODE knob. The variant is exclusive per
// deployment; there is no mixed mode.
func (c Config) DeliveryMode() (domain.Mode, error) {
	switch domain.Mode(c.Mode) {
	case domain.ModeDirected:
		return domain.ModeDirected, nil
	case domain.ModeBroadcast:
		return domain.ModeBroadcast, nil
	default:
		return "", fmt.Errorf("MODE must be %q or %q, got %q",
			domain.ModeDirected, domain.ModeBroadcast, c.Mode)
	}
}

// CensoredWordList splits the comma separated banned word list, dropping
// blanks so a trailing comma cannot smuggle in an empty pattern.
func (c Config) CensoredWordList() []string {
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
