package ads

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"giga/internal/core"
	"giga/internal/logger"
)

const (
	maxLocationNamesPerRequest = 25
	countryTargetType          = "Country"
	suggestLocale              = "en"
)

type suggestBody struct {
	Locale        string        `json:"locale"`
	LocationNames locationNames `json:"locationNames"`
}

type locationNames struct {
	Names []string `json:"names"`
}

type geoTargetConstant struct {
	ResourceName  string     `json:"resourceName"`
	ID            int64Value `json:"id"`
	Name          string     `json:"name"`
	CountryCode   string     `json:"countryCode"`
	TargetType    string     `json:"targetType"`
	CanonicalName string     `json:"canonicalName"`
}

type suggestResponse struct {
	Suggestions []struct {
		GeoTargetConstant geoTargetConstant `json:"geoTargetConstant"`
		SearchTerm        string            `json:"searchTerm"`
	} `json:"geoTargetConstantSuggestions"`
}

// CriterionIDs resolves country names to geo target constant IDs. The
// returned map is keyed by the folded name; every input name must resolve,
// otherwise an error wrapping ErrCriterionNotFound names the first miss.
func (c *Client) CriterionIDs(ctx context.Context, names []string) (map[string]string, error) {
	ids := make(map[string]string, len(names))
	for _, batch := range chunk(names, maxLocationNamesPerRequest) {
		body := suggestBody{Locale: suggestLocale, LocationNames: locationNames{Names: batch}}
		var resp suggestResponse
		if err := c.post(ctx, "geoTargetConstants:suggest", body, &resp); err != nil {
			return nil, err
		}
		for _, name := range batch {
			for _, s := range resp.Suggestions {
				if s.GeoTargetConstant.TargetType != countryTargetType || s.SearchTerm != name {
					continue
				}
				ids[core.FoldKey(name)] = strconv.FormatInt(int64(s.GeoTargetConstant.ID), 10)
				break
			}
		}
	}
	for _, name := range names {
		if _, ok := ids[core.FoldKey(name)]; !ok {
			return nil, fmt.Errorf("location %q: %w", name, ErrCriterionNotFound)
		}
	}
	return ids, nil
}

// GeoID resolves a single country. Numeric input is returned unchanged and
// an empty name means no geo targeting.
func (c *Client) GeoID(ctx context.Context, country string) (string, error) {
	country = strings.TrimSpace(country)
	if country == "" || isNumeric(country) {
		return country, nil
	}
	ids, err := c.CriterionIDs(ctx, []string{country})
	if err != nil {
		return "", err
	}
	id := ids[core.FoldKey(country)]
	logger.Debug("Resolved location", "name", country, "id", id)
	return id, nil
}

type languageRow struct {
	LanguageConstant struct {
		ID   int64Value `json:"id"`
		Name string     `json:"name"`
	} `json:"languageConstant"`
}

// LanguageID resolves a language name such as "English" to its criterion
// ID. Numeric input is returned unchanged and an empty name means no
// language targeting.
func (c *Client) LanguageID(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || isNumeric(name) {
		return name, nil
	}
	query := "SELECT language_constant.id, language_constant.name FROM language_constant WHERE language_constant.targetable = TRUE"
	rows, err := Query[languageRow](ctx, c, "", query)
	if err != nil {
		return "", err
	}
	want := core.FoldKey(name)
	for _, row := range rows {
		if core.FoldKey(row.LanguageConstant.Name) == want {
			return strconv.FormatInt(int64(row.LanguageConstant.ID), 10), nil
		}
	}
	return "", fmt.Errorf("language %q: %w", name, ErrCriterionNotFound)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
