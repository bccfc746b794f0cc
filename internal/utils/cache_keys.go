package utils

import (
	"strconv"
	"strings"

	"github.com/geocoder89/campushub/internal/domain/resource"
)

// ResourcesCachePrefix covers every cached resource listing; writes to any
// resource invalidate the whole prefix.
const ResourcesCachePrefix = "campushub:resources:list:"

func BuildResourcesListCacheKey(f resource.ListFilter) string {
	t := ""
	if f.Type != nil {
		t = string(*f.Type)
	}
	s := ""
	if f.Search != nil {
		s = strings.ToLower(strings.TrimSpace(*f.Search))
	}

	return ResourcesCachePrefix + "v1" +
		":available=" + strconv.FormatBool(f.OnlyAvailable) +
		":type=" + t +
		":q=" + s +
		":page=" + strconv.Itoa(f.Page) +
		":per=" + strconv.Itoa(f.PerPage)
}
