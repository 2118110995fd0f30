package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/edudiag/internal/domain/model"
)

func TestWhitelist_Check(t *testing.T) {
	wl := NewWhitelist([]string{"Safari", "Chrome"}, []string{"wifi"})
	symptoms := []model.SymptomInput{{Type: "login", Description: "cannot_login"}}

	assert.Nil(t, wl.Check(model.DiagnoseRequest{Symptoms: symptoms}))
	assert.Nil(t, wl.Check(model.DiagnoseRequest{Symptoms: symptoms, SystemInfo: &model.SystemInfoInput{}}))

	r := wl.Check(model.DiagnoseRequest{})
	require.NotNil(t, r)
	assert.Empty(t, r.Allowed)

	r = wl.Check(model.DiagnoseRequest{Symptoms: symptoms, SystemInfo: &model.SystemInfoInput{Browser: "Opera"}})
	require.NotNil(t, r)
	assert.Equal(t, []string{"Chrome", "Safari"}, r.Allowed)
	assert.Equal(t, "invalid browser: Opera (allowed: Chrome, Safari)", r.Error())

	r = wl.Check(model.DiagnoseRequest{Symptoms: symptoms, SystemInfo: &model.SystemInfoInput{Browser: "Chrome", ConnectionType: "5g"}})
	require.NotNil(t, r)
	assert.Equal(t, "invalid connection: 5g", r.Message)
}

func TestWhitelist_EmptyAcceptsAnything(t *testing.T) {
	var wl Whitelist
	req := model.DiagnoseRequest{
		Symptoms:   []model.SymptomInput{{Type: "chat", Description: "chat_lag"}},
		SystemInfo: &model.SystemInfoInput{Browser: "Lynx", ConnectionType: "carrier_pigeon"},
	}
	assert.Nil(t, wl.Check(req))
}
