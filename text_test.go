package archiver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteDictAlignment(t *testing.T) {

	text := WriteDict([]DictEntry{
		{"Taken from dir", "/data/Subj01"},
		{"Archived on", "2024-08-27 10:00:00"},
	})

	want := "* Taken from dir :   /data/Subj01\n" +
		"* Archived on    :   2024-08-27 10:00:00\n"

	if text != want {
		t.Errorf("dictionary rendering: got\n%q\nwant\n%q", text, want)
	}
}

func TestReadDictRoundTrip(t *testing.T) {

	entries := []DictEntry{
		{"Taken from dir", "/data/Subj01"},
		{"md5sum for DICOM tarball", "d41d8cd98f00b204e9800998ecf8427e"},
		{"Created by user", ""},
	}

	parsed, err := ReadDict(WriteDict(entries))
	if err != nil {
		t.Fatalf("archiver tests: cannot parse rendered dictionary: %s", err)
	}

	want := map[string]string{
		"Taken from dir":           "/data/Subj01",
		"md5sum for DICOM tarball": "d41d8cd98f00b204e9800998ecf8427e",
		"Created by user":          "",
	}

	if diff := cmp.Diff(want, parsed); diff != "" {
		t.Errorf("parsed dictionary mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDictRejectsGarbage(t *testing.T) {
	if _, err := ReadDict("not a dictionary line"); err == nil {
		t.Fatal("archiver tests: expected an error for an unparsable line")
	}
}

func TestTableAlignment(t *testing.T) {

	var table Table
	table.AppendRow("SN", "File name")
	table.AppendRow("1", "image-000001.dcm")

	want := "SN | File name\n" +
		"1  | image-000001.dcm\n"

	if got := table.String(); got != want {
		t.Errorf("table rendering: got\n%q\nwant\n%q", got, want)
	}
}
