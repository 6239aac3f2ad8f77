package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-intake/internal/catalog"
	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

func damagedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New(logger.NewTestLogger(t))
	cat.Replace(models.CategoryStatus, models.OptionList{
		{Label: "AVAILABLE", Identifier: float64(1)},
		{Label: "DAMAGED", Identifier: float64(2)},
	})
	cat.Replace(models.CategoryZoneName, models.OptionList{
		{Label: "North", Identifier: float64(1)},
	})
	cat.Replace(models.CategoryCampusName, models.OptionList{
		{Label: "Hyderabad Central", Identifier: float64(10)},
	})
	cat.Replace(models.CategoryProName, models.OptionList{
		{Label: "J. Rao", Identifier: float64(55)},
	})
	cat.Replace(models.CategoryDgmName, models.OptionList{
		{Label: "K. Prasad", Identifier: float64(7)},
	})
	return cat
}

func damagedValues() map[string]interface{} {
	return map[string]interface{}{
		"applicationNo": "1023",
		"status":        "Damaged",
		"zoneName":      "North",
		"campusName":    "Hyderabad Central",
		"proName":       "J. Rao",
		"dgmName":       "K. Prasad",
		"reason":        "torn cover",
	}
}

func TestBuildDamagedSubmission_ResolvesAllIdentifiers(t *testing.T) {
	sub, err := BuildDamagedSubmission(damagedCatalog(t), damagedValues(), logger.NewTestLogger(t))
	require.Nil(t, err)

	assert.Equal(t, "1023", sub.ApplicationNo)
	assert.Equal(t, "DAMAGED", sub.Status)
	assert.Equal(t, float64(2), sub.StatusID)
	assert.Equal(t, float64(1), sub.ZoneID)
	assert.Equal(t, float64(10), sub.CampusID)
	assert.Equal(t, float64(55), sub.ProID)
	assert.Equal(t, float64(7), sub.DgmEmpID)
	assert.Equal(t, "torn cover", sub.Reason)
}

func TestBuildDamagedSubmission_CollectsAllMissingIdentifiers(t *testing.T) {
	values := damagedValues()
	values["campusName"] = "No Such Campus"
	values["dgmName"] = ""

	sub, err := BuildDamagedSubmission(damagedCatalog(t), values, logger.NewTestLogger(t))
	require.NotNil(t, err)
	assert.Nil(t, sub)
	assert.Equal(t, errors.ErrCodeMissingIdentifiers, err.Code)
	assert.ElementsMatch(t, []string{"campusId", "dgmEmpId"}, err.Metadata["missingIds"])
}

func TestBuildDamagedSubmission_NonNumericIdentifierBlocks(t *testing.T) {
	cat := damagedCatalog(t)
	// A backend record whose zone identifier is not numeric must be treated
	// as unresolved.
	cat.Replace(models.CategoryZoneName, models.OptionList{
		{Label: "North", Identifier: "north-zone"},
	})

	_, err := BuildDamagedSubmission(cat, damagedValues(), logger.NewTestLogger(t))
	require.NotNil(t, err)
	assert.ElementsMatch(t, []string{"zoneId"}, err.Metadata["missingIds"])
}

func TestBuildDamagedSubmission_NumericStringIdentifierAccepted(t *testing.T) {
	cat := damagedCatalog(t)
	cat.Replace(models.CategoryZoneName, models.OptionList{
		{Label: "North", Identifier: "12"},
	})

	sub, err := BuildDamagedSubmission(cat, damagedValues(), logger.NewTestLogger(t))
	require.Nil(t, err)
	assert.Equal(t, "12", sub.ZoneID)
}

func TestBuildDamagedSubmission_EmptyFormBlocksEverything(t *testing.T) {
	_, err := BuildDamagedSubmission(damagedCatalog(t), map[string]interface{}{}, logger.NewTestLogger(t))
	require.NotNil(t, err)
	assert.ElementsMatch(t,
		[]string{"statusId", "campusId", "proId", "zoneId", "dgmEmpId"},
		err.Metadata["missingIds"])
}
