package excel

import "spckit/adapters/coercer"

// ReaderConfig holds limits and coercion rules for tabular uploads
type ReaderConfig struct {
	MaxRows    int                    `json:"max_rows" mapstructure:"max_rows"`
	MaxColumns int                    `json:"max_columns" mapstructure:"max_columns"`
	Coercion   coercer.CoercionConfig `json:"coercion" mapstructure:"coercion"`
}

// DefaultReaderConfig returns sensible defaults for uploads
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxRows:    10000,
		MaxColumns: 20,
		Coercion:   coercer.DefaultCoercionConfig(),
	}
}
