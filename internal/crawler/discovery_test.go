package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tvListing    = "https://www.prisjakt.no/c/tv"
	coffeeSearch = "https://www.prisjakt.no/search?q=Kaffetrakter"
	coffeeRoot   = "https://www.prisjakt.no/?q=Kaffetrakter"
)

func absolute(links []string) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = "https://www.prisjakt.no" + l
	}
	return out
}

func TestDiscoverForCategory_ListingPage(t *testing.T) {
	r := NewMockRenderer()
	r.pages[tvListing] = &mockPage{
		batches: [][]string{productLinks(1, 5), productLinks(3, 8), productLinks(9, 30)},
	}

	d := NewDiscoverer(r, Prisjakt(), Pacing{})
	links := d.DiscoverForCategory(context.Background(), "TV", 10)

	assert.Equal(t, absolute(productLinks(1, 10)), links)
	assert.Equal(t, []string{tvListing}, r.visited)
	assert.Equal(t, []int{scrollStep, scrollStep, scrollStep}, r.scrolledBy)
	assert.Equal(t, 1, r.consents)
}

func TestDiscoverForCategory_ListingExhaustsRounds(t *testing.T) {
	r := NewMockRenderer()
	r.pages[tvListing] = &mockPage{batches: [][]string{productLinks(1, 3)}}

	links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "tv", 50)

	assert.Equal(t, absolute(productLinks(1, 3)), links)
	assert.Len(t, r.scrolledBy, listingRounds)
	// Found something on the listing, so search is never tried
	assert.Equal(t, []string{tvListing}, r.visited)
}

func TestDiscoverForCategory_SearchFallback(t *testing.T) {
	r := NewMockRenderer()
	r.pages[coffeeSearch] = &mockPage{
		markup: `<div data-url="https://www.prisjakt.no/product.php?p=11"></div>
<script>{"u":"https://www.prisjakt.no/product.php?p=12","v":"https://www.prisjakt.no/product.php?p=11"}</script>`,
	}
	r.pages[coffeeRoot] = &mockPage{
		batches: [][]string{{"/product.php?p=12", "/product.php?p=13", "/c/tv"}},
	}

	links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "Kaffetrakter", 3)

	assert.Equal(t, []string{
		"https://www.prisjakt.no/product.php?p=11",
		"https://www.prisjakt.no/product.php?p=12",
		"https://www.prisjakt.no/product.php?p=13",
	}, links)
	assert.Equal(t, []string{coffeeSearch, coffeeRoot}, r.visited)
	assert.Len(t, r.scrolledBy, searchRounds+1)
}

func TestDiscoverForCategory_EmptyListingFallsBackToSearch(t *testing.T) {
	r := NewMockRenderer()
	r.pages[tvListing] = &mockPage{}
	r.pages["https://www.prisjakt.no/search?q=TV"] = &mockPage{batches: [][]string{productLinks(1, 2)}}

	links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "TV", 2)

	assert.Equal(t, absolute(productLinks(1, 2)), links)
	assert.Equal(t, []string{tvListing, "https://www.prisjakt.no/search?q=TV"}, r.visited)
}

func TestDiscoverForCategory_AllStrategiesFail(t *testing.T) {
	r := NewMockRenderer()
	r.navigateErr[tvListing] = errors.New("timeout")

	links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "TV", 5)

	assert.Empty(t, links)
	assert.Len(t, r.visited, 3)
}

func TestDiscoverForCategory_ScrollFailureEndsStrategy(t *testing.T) {
	r := NewMockRenderer()
	r.pages[tvListing] = &mockPage{batches: [][]string{productLinks(1, 2)}}
	r.scrollErr = errors.New("target closed")

	links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "TV", 5)
	assert.Empty(t, links)
}

func TestDiscoverForCategory_CapAndUniqueness(t *testing.T) {
	batches := [][]string{productLinks(1, 4), productLinks(2, 6), productLinks(5, 9), productLinks(1, 12)}

	for maxLinks := 1; maxLinks <= 15; maxLinks++ {
		r := NewMockRenderer()
		r.pages[tvListing] = &mockPage{batches: batches}

		links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "TV", maxLinks)

		require.LessOrEqual(t, len(links), maxLinks)
		seen := make(map[string]bool)
		for _, l := range links {
			require.False(t, seen[l], "duplicate %s", l)
			seen[l] = true
		}
	}
}

func TestDiscoverForCategory_ZeroCap(t *testing.T) {
	r := NewMockRenderer()
	assert.Empty(t, NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(context.Background(), "TV", 0))
	assert.Empty(t, r.visited)
}

func TestDiscoverForCategory_CanceledContext(t *testing.T) {
	r := NewMockRenderer()
	r.pages[tvListing] = &mockPage{batches: [][]string{productLinks(1, 5)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	links := NewDiscoverer(r, Prisjakt(), Pacing{}).DiscoverForCategory(ctx, "TV", 5)
	assert.Empty(t, links)
	assert.Empty(t, r.scrolledBy)
}
