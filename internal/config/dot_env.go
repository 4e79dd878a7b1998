package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

// DotEnvTryLoad applies a **maybe available** .env file. A missing file is not an error.
// Values already present in the environment win over the file, like dotenv does.
func DotEnvTryLoad(absolutePathToEnvFile string, setEnvFn func(key string, value string) error) {
	err := DotEnvLoad(absolutePathToEnvFile, setEnvFn)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("envFile", absolutePathToEnvFile).Msg(".env parse error, ignoring file")
		}
		return
	}

	log.Debug().Str("envFile", absolutePathToEnvFile).Msg(".env applied to ENV")
}

// DotEnvLoad parses the file strictly and feeds every key not already set in the environment to setEnvFn.
func DotEnvLoad(absolutePathToEnvFile string, setEnvFn func(key string, value string) error) error {
	file, err := os.Open(absolutePathToEnvFile)
	if err != nil {
		return err
	}
	defer file.Close()

	envs, err := gotenv.StrictParse(file)
	if err != nil {
		return errors.Wrap(err, "failed to parse env file")
	}

	for key, value := range envs {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}

		if err := setEnvFn(key, value); err != nil {
			return errors.Wrapf(err, "failed to set env %s", key)
		}
	}

	return nil
}
