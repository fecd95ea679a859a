package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadShippedCatalog(t *testing.T) {
	t.Parallel()

	c, err := Load("../../config/catalog.yaml")
	require.NoError(t, err)

	link, ok := c.ModeLink("onsite")
	require.True(t, ok)
	require.Equal(t, "https://paystack.shop/pay/fixlab_onsite_enroll", link)

	link, ok = c.ModeLink(" Virtual ")
	require.True(t, ok)
	require.Equal(t, "https://paystack.shop/pay/fixlab_virtual_enroll", link)

	_, ok = c.ModeLink("hybrid")
	require.False(t, ok)

	courses := c.Courses("virtual")
	require.Len(t, courses, 4)
	require.Equal(t, Course{Name: "Cybersecurity Online", FullPrice: 50000, InstallmentPrice: 20000}, courses[0])
	require.Nil(t, c.Courses("hybrid"))

	require.Equal(t, "https://paystack.shop/pay/fixlab-enroll", c.PlanLink(PlanInstallment))
	require.Equal(t, c.DefaultLink(), c.PlanLink("weekly"))
}

func TestParseRejectsBadLinks(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
default_link: not a url
gateways:
  modes:
    onsite: ftp://example.com/pay
modes:
  - id: onsite
  - id: ONSITE
`))
	require.True(t, errors.Is(err, ErrInvalidCatalog))
	require.Contains(t, err.Error(), "default_link")
	require.Contains(t, err.Error(), "gateways.modes.onsite")
	require.Contains(t, err.Error(), "modes[1].id")
}

func TestWithRegistrationID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://paystack.shop/pay/x?registration_id=42", WithRegistrationID("https://paystack.shop/pay/x", "42"))
	require.Equal(t, "https://paystack.shop/pay/x?a=1&registration_id=7", WithRegistrationID("https://paystack.shop/pay/x?a=1", "7"))
	require.Equal(t, "https://paystack.shop/pay/x", WithRegistrationID("https://paystack.shop/pay/x", " "))
}
