package repository

import (
	"fmt"

	"go-pos-vault/internal/audit"
	"go-pos-vault/internal/models"
	"go-pos-vault/internal/securestore"
)

const MsgNegativeTaxRate = "Tax rate cannot be negative"

// Settings returns the store configuration.
func (r *Repository) Settings() models.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// UpdateSettings merges the non-nil fields of patch into the settings.
func (r *Repository) UpdateSettings(patch models.SettingsPatch, actor string) (models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.settings
	if patch.StoreName != nil {
		s.StoreName = *patch.StoreName
	}
	if patch.TaxRate != nil {
		s.TaxRate = *patch.TaxRate
	}
	if patch.Currency != nil {
		s.Currency = *patch.Currency
	}
	if patch.Address != nil {
		s.Address = *patch.Address
	}
	if _, ok := models.Check(s); !ok {
		return models.Fail(MsgNegativeTaxRate), nil
	}

	if err := r.store.Write(securestore.KeySettings, s); err != nil {
		return models.Result{}, fmt.Errorf("repository: update settings: %w", err)
	}
	r.settings = s

	return models.OK(), r.record(audit.ActionUpdateSettings, "Updated store settings", actor)
}
