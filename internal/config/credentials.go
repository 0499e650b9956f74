package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envURL   = "FIREFLY_III_URL"
	envToken = "FIREFLY_III_ACCESS_TOKEN"
)

// Credentials locate and authorize the Firefly III instance.
type Credentials struct {
	URL   string
	Token string
}

// LoadCredentials reads credentials from the environment, seeded from envFile when it exists.
// Variables already set in the environment win over the file.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	creds := Credentials{
		URL:   strings.TrimRight(os.Getenv(envURL), "/"),
		Token: os.Getenv(envToken),
	}
	if creds.URL == "" {
		return Credentials{}, fmt.Errorf("%s is not set", envURL)
	}
	if creds.Token == "" {
		return Credentials{}, fmt.Errorf("%s is not set", envToken)
	}
	return creds, nil
}
