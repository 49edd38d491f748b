package pipeline

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Faultbox/aowow-viewer/internal/lookup"
)

// CompositePath is the texture compositor endpoint.
const CompositePath = "/character-texture"

// CompositeRequest is the query sent to the texture compositor.
type CompositeRequest struct {
	Race  string
	Sex   string
	Skin  int
	Items []int
}

// CompositeFor returns the compositor request for req. It reports false
// for non-character requests and for characters with no equipment.
func CompositeFor(req lookup.ModelRequest) (CompositeRequest, bool) {
	if req.Type != lookup.TypeCharacter || len(req.Equipment) == 0 {
		return CompositeRequest{}, false
	}
	return CompositeRequest{
		Race:  lookup.RaceName(req.RaceOr()),
		Sex:   lookup.SexName(req.SexOr()),
		Skin:  req.SkinIndex,
		Items: append([]int(nil), req.Equipment...),
	}, true
}

// Query encodes the request as race, sex, skin and comma-joined items.
func (c CompositeRequest) Query() url.Values {
	items := make([]string, len(c.Items))
	for i, id := range c.Items {
		items[i] = strconv.Itoa(id)
	}
	q := url.Values{}
	q.Set("race", c.Race)
	q.Set("sex", c.Sex)
	q.Set("skin", strconv.Itoa(c.Skin))
	q.Set("items", strings.Join(items, ","))
	return q
}

func (c CompositeRequest) String() string {
	return fmt.Sprintf("%s %s skin=%d items=%v", c.Race, c.Sex, c.Skin, c.Items)
}
