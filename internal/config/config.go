package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lun-4/obsidian-maid/internal/model"
	"github.com/lun-4/obsidian-maid/internal/reorder"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName = ".maid.yaml"
	EnvPrefix       = "MAID"
)

var (
	ErrReorderDisabled = errors.New("config: reorder disabled (set reorder_enabled: true)")
	ErrInvalidSettings = errors.New("config: invalid settings")
)

type Settings struct {
	DefaultPriority     int               `mapstructure:"default_priority" yaml:"default_priority"`
	PriorityInheritance bool              `mapstructure:"priority_inheritance" yaml:"priority_inheritance"`
	ReorderEnabled      bool              `mapstructure:"reorder_enabled" yaml:"reorder_enabled"`
	MedianSplit         bool              `mapstructure:"median_split" yaml:"median_split"`
	Indent              string            `mapstructure:"indent" yaml:"indent"`
	Headers             map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`
	JournalPath         string            `mapstructure:"journal_path" yaml:"journal_path"`
	ReminderBuffer      int               `mapstructure:"reminder_buffer" yaml:"reminder_buffer"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultPriority:     1,
		PriorityInheritance: true,
		ReorderEnabled:      false,
		MedianSplit:         false,
		Indent:              "\t",
		JournalPath:         filepath.Join(".maid", "journal.db"),
		ReminderBuffer:      64,
	}
}

// flagKeys maps CLI flag names to settings keys. Only flags present in the
// flag set are bound.
var flagKeys = map[string]string{
	"default-priority": "default_priority",
	"inherit":          "priority_inheritance",
	"median-split":     "median_split",
	"indent":           "indent",
	"journal":          "journal_path",
}

// Load merges defaults, the settings file, MAID_* environment variables and
// changed flags, in increasing precedence. An empty path looks for
// .maid.yaml in the working directory and tolerates its absence.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("config: read %s: %w", DefaultFileName, err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if fl := flags.Lookup(name); fl != nil {
				if err := v.BindPFlag(key, fl); err != nil {
					return Settings{}, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper, s Settings) {
	v.SetDefault("default_priority", s.DefaultPriority)
	v.SetDefault("priority_inheritance", s.PriorityInheritance)
	v.SetDefault("reorder_enabled", s.ReorderEnabled)
	v.SetDefault("median_split", s.MedianSplit)
	v.SetDefault("indent", s.Indent)
	v.SetDefault("journal_path", s.JournalPath)
	v.SetDefault("reminder_buffer", s.ReminderBuffer)
}

func (s Settings) Validate() error {
	if s.Indent == "" || strings.Trim(s.Indent, " \t") != "" {
		return fmt.Errorf("%w: indent must be spaces or tabs, got %q", ErrInvalidSettings, s.Indent)
	}
	if s.ReminderBuffer <= 0 {
		return fmt.Errorf("%w: reminder_buffer must be positive, got %d", ErrInvalidSettings, s.ReminderBuffer)
	}
	for name, header := range s.Headers {
		if !reorder.Bucket(name).IsValid() {
			return fmt.Errorf("%w: unknown bucket header %q", ErrInvalidSettings, name)
		}
		if strings.ContainsAny(header, "\r\n") {
			return fmt.Errorf("%w: header for %s spans lines", ErrInvalidSettings, name)
		}
	}
	return nil
}

func (s Settings) Scheduling() model.Scheduling {
	return model.Scheduling{
		DefaultPriority:     s.DefaultPriority,
		PriorityInheritance: s.PriorityInheritance,
	}
}

func (s Settings) ReorderOptions() reorder.Options {
	opts := reorder.DefaultOptions()
	opts.MedianSplit = s.MedianSplit
	if s.Indent != "" {
		opts.Indent = s.Indent
	}
	for name, header := range s.Headers {
		opts.Headers[reorder.Bucket(name)] = header
	}
	return opts
}

// GuardReorder must pass before a document is rewritten.
func (s Settings) GuardReorder() error {
	if !s.ReorderEnabled {
		return ErrReorderDisabled
	}
	return nil
}

func Write(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	payload, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
