package pdf

import "testing"

type fakeGetter struct {
	meta *MetaInfo
}

func (f *fakeGetter) GetMeta() *MetaInfo                          { return f.meta }
func (f *fakeGetter) Get(ref Reference, canObjStm bool) (Object, error) { return NullObject, nil }

func TestDeserializeDictRequiredMissing(t *testing.T) {
	d := NewDict()
	g := &fakeGetter{meta: &MetaInfo{}}
	var size Integer
	fields := []FieldDescriptor{
		ObjectField("Size", &size, GetInteger),
	}
	if err := DeserializeDict(g, d, fields, false); err == nil {
		t.Fatal("expected error for missing required field")
	}
}

func TestDeserializeDictOptionalAndUnknown(t *testing.T) {
	d := NewDict()
	_ = d.Set("Size", Integer(3))
	_ = d.Set("Extra", Boolean(true))
	g := &fakeGetter{meta: &MetaInfo{}}

	var size Integer
	var haveInfo bool
	var info Reference
	fields := []FieldDescriptor{
		ObjectField("Size", &size, GetInteger),
		ResolvableField("Info", &info, false),
	}
	_ = haveInfo

	if err := DeserializeDict(g, d, fields, false); err == nil {
		t.Fatal("expected unknown-key error")
	}
	if err := DeserializeDict(g, d, fields, true); err != nil {
		t.Fatalf("unexpected error with allowUnknown: %v", err)
	}
	if size != 3 {
		t.Errorf("Size = %d, want 3", size)
	}
}

func TestAsArrayFieldSingleton(t *testing.T) {
	d := NewDict()
	_ = d.Set("Contents", Integer(5))
	g := &fakeGetter{meta: &MetaInfo{}}

	var nums []Integer
	fields := []FieldDescriptor{
		AsArrayField("Contents", &nums, GetInteger),
	}
	if err := DeserializeDict(g, d, fields, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nums) != 1 || nums[0] != 5 {
		t.Errorf("nums = %v, want [5]", nums)
	}
}
