package validation_test

import (
	"testing"

	"github.com/martory/go-tenant-session/stores"
	"github.com/martory/go-tenant-session/validation"
	"github.com/stretchr/testify/require"
)

func TestValidCNIC(t *testing.T) {
	tests := map[string]bool{
		"35202-1234567-1": true,
		"3520212345671":   false,
		"35202-123456-1":  false,
		"3520a-1234567-1": false,
		"":                false,
	}
	for in, want := range tests {
		require.Equal(t, want, validation.ValidCNIC(in), in)
	}
}

func TestValidPhone(t *testing.T) {
	tests := map[string]bool{
		"03001234567":       true,
		"+923001234567":     true,
		"0300-1234567":      true,
		"+14155552671":      true,
		"0400123":           false,
		"phone":             false,
		"+1234567890123456": false,
	}
	for in, want := range tests {
		require.Equal(t, want, validation.ValidPhone(in), in)
	}
}

func TestValidEmail(t *testing.T) {
	require.True(t, validation.ValidEmail("owner@shop.pk"))
	require.False(t, validation.ValidEmail("owner@shop"))
	require.False(t, validation.ValidEmail("owner shop@x.pk"))
	require.False(t, validation.ValidEmail(""))
}

func TestValidateSubdomain(t *testing.T) {
	tests := []struct {
		in      string
		wantErr string
	}{
		{in: "acme"},
		{in: "acme-store"},
		{in: "a1b"},
		{in: "a"},
		{in: "ab"},
		{in: "42"},
		{in: "", wantErr: "required"},
		{in: "Acme", wantErr: "lowercase"},
		{in: "-acme", wantErr: "may only contain"},
		{in: "acme-", wantErr: "may only contain"},
		{in: "a-", wantErr: "may only contain"},
		{in: "ac.me", wantErr: "may only contain"},
		{in: "www", wantErr: "reserved"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validation.ValidateSubdomain(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidator_ValidateStore(t *testing.T) {
	v := validation.NewValidator()

	t.Run("valid", func(t *testing.T) {
		err := v.ValidateStore(stores.Store{
			StoreName: "Acme Mart",
			Subdomain: "acme",
			CNIC:      "35202-1234567-1",
			Phone:     "03001234567",
			Email:     "owner@acme.pk",
		})
		require.NoError(t, err)
	})

	t.Run("field errors", func(t *testing.T) {
		err := v.ValidateStore(stores.Store{
			Subdomain: "Bad Sub",
			CNIC:      "123",
			Phone:     "12",
			Email:     "nope",
		})
		var fe validation.FieldErrors
		require.ErrorAs(t, err, &fe)
		require.Len(t, fe, 5)
		require.Contains(t, fe, "store_name")
		require.Contains(t, fe, "cnic")
		require.Contains(t, err.Error(), "cnic: CNIC must look like")
	})
}

func TestValidator_ValidateRegistration(t *testing.T) {
	v := validation.NewValidator()
	require.NoError(t, v.ValidateRegistration("Owner", "owner@acme.pk", "Str0ngPassword"))

	err := v.ValidateRegistration("", "bad", "weak")
	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe, 3)
}

func TestValidator_ValidateCredentials(t *testing.T) {
	v := validation.NewValidator()
	require.NoError(t, v.ValidateCredentials("owner@acme.pk", "x"))
	require.Error(t, v.ValidateCredentials("", ""))
}
