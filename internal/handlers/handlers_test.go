package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
)

func testModes() []catalog.Mode {
	return []catalog.Mode{
		{ID: "virtual", Label: "Online", Courses: []catalog.Course{
			{Name: "Python Programming Online", FullPrice: 40000, InstallmentPrice: 15000},
		}},
		{ID: "onsite", Label: "Onsite"},
	}
}

func TestBuildHomeDataFormatsPrices(t *testing.T) {
	t.Parallel()

	home := BuildHomeData(testModes())
	require.Len(t, home.Modes, 2)
	require.Equal(t, CourseView{Name: "Python Programming Online", Full: "₦40,000", Installment: "₦15,000"}, home.Modes[0].Courses[0])
	require.Empty(t, home.Modes[1].Courses)
}

func TestCourseOptions(t *testing.T) {
	t.Parallel()

	opts := CourseOptions(testModes()[0].Courses, "python programming online")
	require.Len(t, opts, 2)
	require.False(t, opts[0].Selected)
	require.True(t, opts[1].Selected)
	require.Equal(t, "Python Programming Online (₦40,000 full / ₦15,000 installment)", opts[1].Label)

	opts = CourseOptions(nil, "")
	require.Len(t, opts, 1)
	require.True(t, opts[0].Selected)
}

func TestAnalyticsEnabled(t *testing.T) {
	t.Parallel()

	require.False(t, Analytics{}.Enabled())
	require.True(t, Analytics{GA4MeasurementID: "G-TEST"}.Enabled())
}
