package cli_test

import (
	"bytes"
	"testing"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitguard/cmd/cli"
	"github.com/temirov/gitguard/internal/shared"
)

type embeddedConfigurationDocument struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Repository struct {
		Path       string `yaml:"path"`
		Remote     string `yaml:"remote"`
		GitCommand string `yaml:"git_command"`
	} `yaml:"repository"`
}

func TestEmbeddedDefaultConfigurationIsStrictYAML(t *testing.T) {
	decoder := yaml.NewDecoder(bytes.NewReader(cli.EmbeddedDefaultConfiguration()))
	decoder.KnownFields(true)

	var document embeddedConfigurationDocument
	require.NoError(t, decoder.Decode(&document))

	defaults := shared.DefaultRepositoryConfiguration()
	require.Equal(t, "info", document.Common.LogLevel)
	require.Equal(t, "structured", document.Common.LogFormat)
	require.Equal(t, defaults.RepositoryPath, document.Repository.Path)
	require.Equal(t, defaults.RemoteName, document.Repository.Remote)
	require.Equal(t, defaults.GitCommand, document.Repository.GitCommand)
}

func TestEmbeddedDefaultConfigurationDecodesIntoApplicationConfiguration(t *testing.T) {
	viperInstance := viper.New()
	viperInstance.SetConfigType("yaml")
	require.NoError(t, viperInstance.ReadConfig(bytes.NewReader(cli.EmbeddedDefaultConfiguration())))

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		Result:      &configuration,
		ErrorUnused: true,
	})
	require.NoError(t, decoderError)
	require.NoError(t, decoder.Decode(viperInstance.AllSettings()))

	require.Equal(t, cli.ApplicationConfiguration{
		Common:     cli.ApplicationCommonConfiguration{LogLevel: "info", LogFormat: "structured"},
		Repository: shared.DefaultRepositoryConfiguration(),
	}, configuration)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(t *testing.T) {
	first := cli.EmbeddedDefaultConfiguration()
	first[0] = '#'
	require.NotEqual(t, first, cli.EmbeddedDefaultConfiguration())
}
