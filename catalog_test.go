package pdf

import "testing"

func TestExtractCatalogBasics(t *testing.T) {
	d := NewDict()
	_ = d.Set("Type", Name("Catalog"))
	_ = d.Set("Pages", Reference{ID: 3, Gen: 0})
	_ = d.Set("Lang", String("en-US"))

	g := &fakeGetter{meta: &MetaInfo{}}
	cat, err := ExtractCatalog(g, d)
	if err != nil {
		t.Fatalf("ExtractCatalog: %v", err)
	}
	if cat.Pages != (Reference{ID: 3, Gen: 0}) {
		t.Errorf("Pages = %+v, want {3 0}", cat.Pages)
	}
	if cat.Lang.String() == "" {
		t.Errorf("expected a parsed language tag")
	}
}

func TestExtractCatalogWrongTypeRejected(t *testing.T) {
	d := NewDict()
	_ = d.Set("Type", Name("Pages"))
	g := &fakeGetter{meta: &MetaInfo{}}
	if _, err := ExtractCatalog(g, d); err == nil {
		t.Fatal("expected error for mismatched /Type")
	}
}

func TestExtractInfoCustomFields(t *testing.T) {
	d := NewDict()
	_ = d.Set("Title", String("Report"))
	_ = d.Set("CustomField", String("value"))
	g := &fakeGetter{meta: &MetaInfo{}}

	info, err := ExtractInfo(g, d)
	if err != nil {
		t.Fatalf("ExtractInfo: %v", err)
	}
	if info.Title != "Report" {
		t.Errorf("Title = %q, want %q", info.Title, "Report")
	}
	if info.Custom["CustomField"] != "value" {
		t.Errorf("Custom[CustomField] = %q, want %q", info.Custom["CustomField"], "value")
	}
}
