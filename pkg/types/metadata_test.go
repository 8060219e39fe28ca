// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func sample() *Description {
	d := NewDescription()
	d.Set(FieldSource, "Nature")
	d.Set(FieldAuthors, []Person{{Surname: "LeCun", GivenNames: "Yann"}})
	d.Set(FieldDate, "2015")
	d.Set(FieldArticleTitle, "Deep learning")
	return d
}

func TestDescriptionSetKeepsFirstPosition(t *testing.T) {
	d := sample()
	d.Set(FieldSource, "Nature Reviews")

	assert.Equal(t, []string{FieldSource, FieldAuthors, FieldDate, FieldArticleTitle}, d.Names())
	assert.Equal(t, "Nature Reviews", d.GetString(FieldSource))
	assert.Equal(t, 4, d.Len())
}

func TestDescriptionHasDistinguishesEmpty(t *testing.T) {
	d := NewDescription()
	d.Set(FieldVolume, "")

	assert.True(t, d.Has(FieldVolume))
	assert.False(t, d.Has(FieldIssue))
	assert.Equal(t, StateUnparsed, d.State)
}

func TestDescriptionCloneIsIndependent(t *testing.T) {
	d := sample()
	d.Score = 50
	c := d.Clone()
	c.Set(FieldPublicationType, "journal")
	c.Set(FieldDate, "2016")

	assert.False(t, d.Has(FieldPublicationType))
	assert.Equal(t, "2015", d.GetString(FieldDate))
	assert.Equal(t, 50.0, c.Score)
	assert.Len(t, d.Names(), 4)
}

func TestDescriptionCloneCopiesValues(t *testing.T) {
	d := sample()
	d.Set(FieldConfSponsor, []any{"ACM", map[string]any{"name": "IEEE"}})
	c := d.Clone()

	c.GetPeople(FieldAuthors)[0].Surname = "Changed"
	v, _ := c.Get(FieldConfSponsor)
	v.([]any)[0] = "Changed"
	v.([]any)[1].(map[string]any)["name"] = "Changed"

	assert.Equal(t, "LeCun", d.GetPeople(FieldAuthors)[0].Surname)
	orig, _ := d.Get(FieldConfSponsor)
	assert.Equal(t, []any{"ACM", map[string]any{"name": "IEEE"}}, orig)
}

func TestCopyValue(t *testing.T) {
	names := []string{"a", "b"}
	got := CopyValue(names).([]string)
	got[0] = "z"
	assert.Equal(t, []string{"a", "b"}, names)

	assert.Equal(t, "521", CopyValue("521"))
	assert.Equal(t, 3, CopyValue(3))
	assert.Nil(t, CopyValue([]Person(nil)))
}

func TestDescriptionText(t *testing.T) {
	d := NewDescription()
	d.Set(FieldDate, 2015)
	d.Set(FieldVolume, "521")
	d.Set(FieldAuthors, []Person{{Surname: "LeCun"}})

	assert.Equal(t, "2015", d.Text(FieldDate))
	assert.Equal(t, "521", d.Text(FieldVolume))
	assert.Equal(t, "", d.Text(FieldAuthors))
	assert.Equal(t, "", d.Text(FieldIssue))
}

func TestPublicationType(t *testing.T) {
	d := NewDescription()
	_, ok := d.PublicationType()
	assert.False(t, ok)

	d.Set(FieldPublicationType, "Conf-Proc")
	pt, ok := d.PublicationType()
	assert.True(t, ok)
	assert.Equal(t, PublicationConfProc, pt)

	assert.Equal(t, PublicationUnknown, ParsePublicationType("thesis"))
}

func TestDescriptionYAMLKeepsOrder(t *testing.T) {
	data, err := yaml.Marshal(sample())
	require.NoError(t, err)

	out := string(data)
	src := strings.Index(out, "source:")
	date := strings.Index(out, "date:")
	title := strings.Index(out, "article-title:")
	require.True(t, src >= 0 && date >= 0 && title >= 0, out)
	assert.Less(t, src, date)
	assert.Less(t, date, title)

	var back Description
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, sample().Names(), back.Names())
	assert.Equal(t, []Person{{Surname: "LeCun", GivenNames: "Yann"}}, back.GetPeople(FieldAuthors))
	assert.Equal(t, "2015", back.GetString(FieldDate), "quoted numbers stay strings")
}

func TestDescriptionYAMLPersonGroups(t *testing.T) {
	doc := `
'person-group[@person-group-type="editor"]':
  - surname: Doe
    given-names: A
  - surname: Roe
article-title: Handbook
volume: 3
`
	var d Description
	require.NoError(t, yaml.Unmarshal([]byte(doc), &d))

	assert.Equal(t, []Person{{Surname: "Doe", GivenNames: "A"}, {Surname: "Roe"}}, d.GetPeople(FieldEditors))
	v, ok := d.Get(FieldVolume)
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, StateUnparsed, d.State)
}

func TestDescriptionYAMLRejectsNonMapping(t *testing.T) {
	for _, doc := range []string{"- a\n- b\n", "just text\n"} {
		var d Description
		err := yaml.Unmarshal([]byte(doc), &d)
		require.Error(t, err, doc)
		assert.Contains(t, err.Error(), "must be a mapping")
	}
}

func TestDescriptionJSONKeepsOrder(t *testing.T) {
	data, err := json.Marshal(sample())
	require.NoError(t, err)

	assert.Equal(t,
		`{"source":"Nature","person-group[@person-group-type=\"author\"]":[{"surname":"LeCun","given-names":"Yann"}],"date":"2015","article-title":"Deep learning"}`,
		string(data))
}

func TestPersonString(t *testing.T) {
	assert.Equal(t, "LeCun, Yann", Person{Surname: "LeCun", GivenNames: "Yann"}.String())
	assert.Equal(t, "Plato", Person{Surname: "Plato"}.String())
}
