package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Sentinel errors, all fatal before the game starts
var (
	ErrUsage            = errors.New("usage: snake [flags] [width height speed num_food]")
	ErrParse            = errors.New("failed to parse")
	ErrInvalid          = errors.New("invalid configuration")
	ErrTooMuchFood      = errors.New("too much food")
	ErrTerminalTooSmall = errors.New("terminal not large enough for specified dimensions")
)

// Speed bounds, tick is 1000-speed milliseconds
// MaxDimension bounds each board side so width*height cannot overflow
const (
	MaxDimension = 10000

	MinSpeed = 0
	MaxSpeed = 999
)

// Config is the game setup
type Config struct {
	Width     int    `toml:"width" validate:"gt=0,max=10000"`
	Height    int    `toml:"height" validate:"gt=0,max=10000"`
	Speed     int    `toml:"speed" validate:"min=0,max=999"`
	FoodCount int    `toml:"food" validate:"min=0"`
	Sound     bool   `toml:"sound"`
	Volume    int    `toml:"volume" validate:"min=0,max=100"`
	Spectate  string `toml:"spectate" validate:"omitempty,hostname_port"`
	Seed      int64  `toml:"seed"`
}

// Default returns a playable 20x15 board
func Default() Config {
	return Config{
		Width:     20,
		Height:    15,
		Speed:     850,
		FoodCount: 3,
		Volume:    50,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their file key so messages match what the user typed
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// LoadFile reads a TOML config on top of Default
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and the food limit
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalid, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if limit := c.Width * c.Height / 2; c.FoodCount > limit {
		return fmt.Errorf("%w: %d food on a %dx%d board, at most %d", ErrTooMuchFood, c.FoodCount, c.Width, c.Height, limit)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// TickInterval is the fixed simulation step
func (c Config) TickInterval() time.Duration {
	speed := min(max(c.Speed, MinSpeed), MaxSpeed)
	return time.Duration(1000-speed) * time.Millisecond
}

// RequiredSize returns the terminal cells needed to draw the board
// Each cell is two columns wide plus the side borders; rows add the header and both borders
func (c Config) RequiredSize() (cols, rows int) {
	return 2*c.Width + 3, c.Height + 3
}

// CheckTerminal reports whether a cols x rows terminal can show the board
func (c Config) CheckTerminal(cols, rows int) error {
	needCols, needRows := c.RequiredSize()
	checkX := cols < needCols
	checkY := rows < needRows
	if checkX || checkY {
		return fmt.Errorf("%w: x: %t, y: %t (need %dx%d, have %dx%d)",
			ErrTerminalTooSmall, checkX, checkY, needCols, needRows, cols, rows)
	}
	return nil
}
