package config

import (
	"errors"
	"testing"
)

type validatedConfig struct {
	Service string `validate:"required"`
	Bind    string `validate:"required,hostname_port"`
	Workers int    `validate:"min=1,max=1024"`
	Level   string `validate:"omitempty,oneof=debug info warn error"`
}

// TestValidatorValidate 测试结构体验证
func TestValidatorValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		config  *validatedConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: &validatedConfig{
				Service: "web",
				Bind:    "0.0.0.0:17382",
				Workers: 4,
				Level:   "info",
			},
			wantErr: false,
		},
		{
			name: "missing required service",
			config: &validatedConfig{
				Bind:    "0.0.0.0:17382",
				Workers: 1,
			},
			wantErr: true,
		},
		{
			name: "bind not host:port",
			config: &validatedConfig{
				Service: "web",
				Bind:    "not-an-address",
				Workers: 1,
			},
			wantErr: true,
		},
		{
			name: "workers below minimum",
			config: &validatedConfig{
				Service: "web",
				Bind:    "0.0.0.0:17382",
				Workers: 0,
			},
			wantErr: true,
		},
		{
			name: "invalid level enum",
			config: &validatedConfig{
				Service: "web",
				Bind:    "0.0.0.0:17382",
				Workers: 1,
				Level:   "verbose",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Validate() error = %v, want wrapped ErrValidationFailed", err)
			}
		})
	}
}

// TestValidatorValidateNil 测试 nil 配置
func TestValidatorValidateNil(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(nil); !errors.Is(err, ErrNilConfig) {
		t.Errorf("Validate(nil) error = %v, want ErrNilConfig", err)
	}
}

// TestValidatorValidateField 测试单值验证
func TestValidatorValidateField(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateField("127.0.0.1:8500", "hostname_port"); err != nil {
		t.Errorf("ValidateField(valid addr) error = %v", err)
	}
	if err := v.ValidateField("nope", "hostname_port"); err == nil {
		t.Error("ValidateField(invalid addr) expected error")
	}
	if err := v.ValidateField(3, "min=1,max=5"); err != nil {
		t.Errorf("ValidateField(3, min/max) error = %v", err)
	}
}
