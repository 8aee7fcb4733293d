package remote

import "testing"

func TestPathAfterBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		bucket string
		want   string
		ok     bool
	}{
		{name: "public url", url: "https://cdn.example.com/storage/v1/object/public/project_files/abc.pdf", bucket: "project_files", want: "abc.pdf", ok: true},
		{name: "escaped path", url: "http://localhost:8080/storage/v1/object/public/project_files/my%20file.txt", bucket: "project_files", want: "my file.txt", ok: true},
		{name: "nested path", url: "https://b.s3.amazonaws.com/project_files/2024/a.png", bucket: "project_files", want: "2024/a.png", ok: true},
		{name: "other bucket", url: "https://cdn.example.com/public/avatars/a.png", bucket: "project_files", ok: false},
		{name: "bucket only", url: "https://cdn.example.com/project_files/", bucket: "project_files", ok: false},
		{name: "empty", url: "", bucket: "project_files", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := PathAfterBucket(tt.url, tt.bucket)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("PathAfterBucket(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestListRoundTrip(t *testing.T) {
	raw, err := EncodeList([]string{"go", "sql"})
	if err != nil {
		t.Fatalf("EncodeList: %v", err)
	}
	if raw != `["go","sql"]` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	empty, err := EncodeList(nil)
	if err != nil || empty != "[]" {
		t.Fatalf("EncodeList(nil) = %q, %v", empty, err)
	}
	got, err := DecodeList("")
	if err != nil || len(got) != 0 || got == nil {
		t.Fatalf("DecodeList(\"\") = %#v, %v", got, err)
	}
}

func TestFieldsColumnsSorted(t *testing.T) {
	f := Fields{"title": "x", "featured": true, "demo_url": nil}
	cols := f.Columns()
	want := []string{"demo_url", "featured", "title"}
	for i := range want {
		if cols[i] != want[i] {
			t.Fatalf("Columns() = %v, want %v", cols, want)
		}
	}
}
