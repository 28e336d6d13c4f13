package funds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stewardbooks/steward/internal/model"
)

func testFunds() []model.Fund {
	return []model.Fund{
		{ID: "f1", ChurchID: "st-marks", Name: "General", Type: model.FundGeneral},
		{ID: "f2", ChurchID: "st-marks", Name: "Roof Appeal", Type: model.FundRestricted},
		{ID: "f3", ChurchID: "st-lukes", Name: "General", Type: model.FundGeneral},
	}
}

func TestExistsAndGet(t *testing.T) {
	svc := NewService(testFunds())

	assert.True(t, svc.Exists("f1"))
	assert.False(t, svc.Exists("missing"))

	f, ok := svc.Get("f2")
	assert.True(t, ok)
	assert.Equal(t, "Roof Appeal", f.Name)
}

func TestBelongsTo(t *testing.T) {
	svc := NewService(testFunds())

	assert.True(t, svc.BelongsTo("f1", "st-marks"))
	// Real fund, wrong church: ownership check must fail.
	assert.False(t, svc.BelongsTo("f3", "st-marks"))
	assert.False(t, svc.BelongsTo("missing", "st-marks"))
}

func TestByType(t *testing.T) {
	svc := NewService(testFunds())
	restricted := svc.ByType(model.FundRestricted)
	assert.Len(t, restricted, 1)
	assert.Equal(t, "f2", restricted[0].ID)
}
