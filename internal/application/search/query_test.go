package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrBool(b bool) *bool { return &b }
func ptrInt(n int64) *int64 { return &n }

func TestParse_Empty(t *testing.T) {
	assert.Equal(t, CommissionsSearchQuery{}, Parse(""))
	assert.Equal(t, CommissionsSearchQuery{}, Parse("   \t\n "))
}

func TestParse_Garbage(t *testing.T) {
	q := Parse(" ffjsdlf  d:a:a 33!@#$%^&*()_::LOIJ(OL:)    ")
	assert.Equal(t, CommissionsSearchQuery{}, q)
	assert.Equal(t, "", q.String())
}

func TestParse_AllTokens(t *testing.T) {
	q := Parse("creator:Alice state:review sort:created_date offer:12 self_managed:false order:a commissioner:bob state:finished")
	assert.Equal(t, CommissionsSearchQuery{
		Sort:         "created_date",
		SelfManaged:  ptrBool(false),
		Review:       true,
		Closed:       true,
		Offer:        ptrInt(12),
		Order:        "a",
		Commissioner: "bob",
		Creator:      "Alice",
	}, q)
}

func TestParse_CaseInsensitivePrefixAndValue(t *testing.T) {
	q := Parse("STATE:In_Progress Sort:UPDATED_DATE SELF_MANAGED:True ORDER:D Creator:MixedCase")
	assert.True(t, q.InProgress)
	assert.Equal(t, "updated_date", q.Sort)
	assert.Equal(t, ptrBool(true), q.SelfManaged)
	assert.Equal(t, "d", q.Order)
	assert.Equal(t, "MixedCase", q.Creator)
}

func TestParse_DropsInvalidValues(t *testing.T) {
	q := Parse("offer:abc123 sort:price order:up self_managed:maybe state:done commissioner: unknown:x")
	assert.Equal(t, CommissionsSearchQuery{}, q)
}

func TestParse_StatesAccumulate(t *testing.T) {
	q := Parse("state:review state:accepted state:rejected")
	assert.True(t, q.Review)
	assert.True(t, q.Accepted)
	assert.True(t, q.Rejected)
	assert.False(t, q.InProgress)
	assert.False(t, q.Closed)
}

func TestString_CanonicalOrder(t *testing.T) {
	q := Parse("creator:c commissioner:b order:d offer:3 state:rejected state:review self_managed:true sort:updated_date")
	assert.Equal(t, "sort:updated_date self_managed:true state:review state:rejected offer:3 order:d commissioner:b creator:c", q.String())
}

func TestRoundTrip_GeneratedQueries(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"alice", "Bob", "carol99", "DAVE"}
	for i := 0; i < 100; i++ {
		q := randomQuery(rng, names)
		assert.Equal(t, q, Parse(q.String()), q.String())
	}
}

func randomQuery(rng *rand.Rand, names []string) CommissionsSearchQuery {
	var q CommissionsSearchQuery
	switch rng.Intn(3) {
	case 1:
		q.Sort = "created_date"
	case 2:
		q.Sort = "updated_date"
	}
	if rng.Intn(2) == 0 {
		q.SelfManaged = ptrBool(rng.Intn(2) == 0)
	}
	q.Review = rng.Intn(2) == 0
	q.Accepted = rng.Intn(2) == 0
	q.InProgress = rng.Intn(2) == 0
	q.Closed = rng.Intn(2) == 0
	q.Rejected = rng.Intn(2) == 0
	if rng.Intn(2) == 0 {
		q.Offer = ptrInt(rng.Int63n(1_000_000))
	}
	switch rng.Intn(3) {
	case 1:
		q.Order = OrderAscending
	case 2:
		q.Order = OrderDescending
	}
	if rng.Intn(2) == 0 {
		q.Commissioner = names[rng.Intn(len(names))]
	}
	if rng.Intn(2) == 0 {
		q.Creator = names[rng.Intn(len(names))]
	}
	return q
}
