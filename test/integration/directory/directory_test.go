package integrationtests

import (
	"net/http"
	"testing"

	"carematch/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type caregiverResponse struct {
	ID         string `json:"id"`
	GivenName  string `json:"given_name"`
	City       string `json:"city"`
	HourlyRate string `json:"hourly_rate"`
}

func setup(t *testing.T) *testutil.Client {
	t.Helper()
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	t.Cleanup(func() { env.Cleanup(t, mongo) })
	return client
}

func TestSearchCaregivers_SortByGivenName(t *testing.T) {
	client := setup(t)

	resp := client.GET(t, testutil.Path("/caregivers?sort_by=given_name"))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var caregivers []caregiverResponse
	testutil.Data(t, resp, &caregivers)
	require.NotEmpty(t, caregivers)
	for i := 1; i < len(caregivers); i++ {
		assert.LessOrEqual(t, caregivers[i-1].GivenName, caregivers[i].GivenName)
	}

	resp = client.GET(t, testutil.Path("/caregivers?sort_by=email"))
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestCaregiverUpdatesOwnProfile(t *testing.T) {
	client := setup(t)
	caregiver := client.As(testutil.CaregiverID)

	resp := caregiver.PUT(t, testutil.Path("/caregivers/me"), map[string]any{"city": " Almaty ", "hourly_rate": "31.25"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var updated caregiverResponse
	testutil.Data(t, resp, &updated)
	assert.Equal(t, testutil.CaregiverID, updated.ID)
	assert.Equal(t, "Almaty", updated.City)
	assert.Equal(t, "31.25", updated.HourlyRate)

	resp = client.As(testutil.OtherCaregiverID).PUT(t, testutil.Path("/caregivers/%s", testutil.CaregiverID), map[string]any{"city": "Astana"})
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
}

func TestMemberPrimaryAddress(t *testing.T) {
	client := setup(t)
	member := client.As(testutil.MemberID)
	t.Cleanup(func() { member.DELETE(t, testutil.Path("/members/me/address")) })

	resp := member.PUT(t, testutil.Path("/members/me"), map[string]any{"house_rules": "No shoes indoors"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"house_rules":"No shoes indoors"`)

	resp = member.PUT(t, testutil.Path("/members/me/address"), map[string]any{
		"house_number": "12A",
		"street":       "Kabanbay Batyr",
		"town":         "Astana",
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = member.GET(t, testutil.Path("/members/me/address"))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"street":"Kabanbay Batyr"`)

	resp = client.As(testutil.OtherMemberID).GET(t, testutil.Path("/members/%s/address", testutil.MemberID))
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	resp = client.GET(t, testutil.Path("/members/%s", testutil.MemberID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	assert.NotContains(t, string(resp.Body), "primary_address")

	testutil.AssertStatusCode(t, member.DELETE(t, testutil.Path("/members/me/address")), http.StatusNoContent)
	testutil.AssertStatusCode(t, member.DELETE(t, testutil.Path("/members/me/address")), http.StatusNoContent)
	testutil.AssertStatusCode(t, member.GET(t, testutil.Path("/members/me/address")), http.StatusNotFound)
}
