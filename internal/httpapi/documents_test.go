package httpapi

import (
	"math"
	"net/http"
	"testing"
)

func point(x, y, z float64) map[string]any {
	return map[string]any{"x": x, "y": y, "z": z}
}

// addWire posts a wire and returns its DTO, failing the test on any
// non-201 answer.
func addWire(t *testing.T, s *Server, docID string, end1, end2 map[string]any) wireDTO {
	t.Helper()

	resp := doJSON(t, s.App(), http.MethodPost, "/v1/documents/"+docID+"/wires",
		map[string]any{"end1": end1, "end2": end2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add wire status = %d, want 201: %s", resp.StatusCode, readBody(t, resp))
	}
	var w wireDTO
	decodeInto(t, resp, &w)
	return w
}

func getDocument(t *testing.T, s *Server, docID string) documentDTO {
	t.Helper()

	resp := doJSON(t, s.App(), http.MethodGet, "/v1/documents/"+docID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get document status = %d, want 200", resp.StatusCode)
	}
	return decodeDoc(t, resp)
}

func TestCreateDocumentDefaults(t *testing.T) {
	s, _ := newTestServer(t, "")

	doc := createDocument(t, s.App(), 0)
	if doc.DocumentID == "" {
		t.Fatal("expected a document id")
	}
	if doc.FrequencyMHz != 14.1 {
		t.Fatalf("frequency = %v, want 14.1", doc.FrequencyMHz)
	}
	if len(doc.Wires) != 0 || len(doc.Excitations) != 0 {
		t.Fatalf("new document not empty: %d wires, %d excitations", len(doc.Wires), len(doc.Excitations))
	}
	if doc.CanUndo || doc.CanRedo {
		t.Fatalf("new document has history: undo=%v redo=%v", doc.CanUndo, doc.CanRedo)
	}
	if doc.Selection == nil {
		t.Fatal("selection should encode as [] rather than null")
	}

	custom := createDocument(t, s.App(), 7.05)
	if custom.FrequencyMHz != 7.05 {
		t.Fatalf("frequency = %v, want 7.05", custom.FrequencyMHz)
	}
}

func TestAddWireDefaultsAndAutoFeed(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)

	w := addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))
	if w.Tag != 1 {
		t.Fatalf("tag = %d, want 1", w.Tag)
	}
	if w.Segments != 5 {
		t.Fatalf("segments = %d, want 5 for a 10 m wire at 14.1 MHz", w.Segments)
	}
	if w.RadiusM != 0.001 {
		t.Fatalf("radius = %v, want default 0.001", w.RadiusM)
	}
	if w.LengthM != 10 {
		t.Fatalf("length = %v, want 10", w.LengthM)
	}

	got := getDocument(t, s, doc.DocumentID)
	if len(got.Excitations) != 1 {
		t.Fatalf("excitations = %d, want the automatic feed", len(got.Excitations))
	}
	feed := got.Excitations[0]
	if feed.WireTag != 1 || feed.Segment != 3 || feed.VoltageRe != 1 || feed.VoltageIm != 0 {
		t.Fatalf("feed = %+v, want 1 V at wire 1 segment 3", feed)
	}
	if got.TotalSegments != 5 {
		t.Fatalf("total segments = %d, want 5", got.TotalSegments)
	}
	if !got.CanUndo || got.UndoDepth != 1 {
		t.Fatalf("undo state = %v/%d, want true/1", got.CanUndo, got.UndoDepth)
	}
}

func TestAddWireZeroLengthGetsSegmentFloor(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 0)

	// Coincident endpoints are accepted; segmentation floors at the
	// five-segment minimum and the solver input is the caller's problem.
	w := addWire(t, s, doc.DocumentID, point(1, 2, 3), point(1, 2, 3))
	if w.Segments != 5 {
		t.Fatalf("segments = %d, want the 5-segment floor", w.Segments)
	}
	if w.LengthM != 0 {
		t.Fatalf("length = %v, want 0", w.LengthM)
	}
}

func TestFrequencyChangeResegments(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))

	resp := doJSON(t, s.App(), http.MethodPut, "/v1/documents/"+doc.DocumentID+"/frequency",
		map[string]any{"mhz": 28.2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeDoc(t, resp)
	if got.FrequencyMHz != 28.2 {
		t.Fatalf("frequency = %v, want 28.2", got.FrequencyMHz)
	}
	if got.Wires[0].Segments != 11 {
		t.Fatalf("segments = %d, want 11 after doubling the frequency", got.Wires[0].Segments)
	}
	if got.Excitations[0].Segment != 6 {
		t.Fatalf("feed segment = %d, want recentred 6", got.Excitations[0].Segment)
	}

	for _, mhz := range []float64{0, -5} {
		resp := doJSON(t, s.App(), http.MethodPut, "/v1/documents/"+doc.DocumentID+"/frequency",
			map[string]any{"mhz": mhz})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("mhz=%v status = %d, want 400", mhz, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestUpdateWireRetunesSegments(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))

	resp := doJSON(t, s.App(), http.MethodPatch, "/v1/documents/"+doc.DocumentID+"/wires/1",
		map[string]any{"edits": []map[string]any{
			{"op": "set_end2", "point": point(20, 0, 10)},
			{"op": "set_radius", "radius_m": 0.002},
		}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, readBody(t, resp))
	}
	var w wireDTO
	decodeInto(t, resp, &w)
	if w.LengthM != 20 {
		t.Fatalf("length = %v, want 20", w.LengthM)
	}
	if w.Segments != 11 {
		t.Fatalf("segments = %d, want 11 for a 20 m wire at 14.1 MHz", w.Segments)
	}
	if w.RadiusM != 0.002 {
		t.Fatalf("radius = %v, want 0.002", w.RadiusM)
	}

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"empty edits", map[string]any{"edits": []map[string]any{}}, http.StatusBadRequest},
		{"unknown op", map[string]any{"edits": []map[string]any{{"op": "stretch"}}}, http.StatusBadRequest},
		{"missing point", map[string]any{"edits": []map[string]any{{"op": "set_end1"}}}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := doJSON(t, s.App(), http.MethodPatch, "/v1/documents/"+doc.DocumentID+"/wires/1", tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.want)
		}
		resp.Body.Close()
	}

	resp = doJSON(t, s.App(), http.MethodPatch, "/v1/documents/"+doc.DocumentID+"/wires/99",
		map[string]any{"edits": []map[string]any{{"op": "set_radius", "radius_m": 0.003}}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown wire status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMoveWirePreservesSegments(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))

	resp := doJSON(t, s.App(), http.MethodPost, "/v1/documents/"+doc.DocumentID+"/wires/1/move",
		map[string]any{"dx": 0, "dy": 5, "dz": -2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var w wireDTO
	decodeInto(t, resp, &w)
	if w.End1.Y != 5 || w.End2.Y != 5 || w.End1.Z != 8 || w.End2.Z != 8 {
		t.Fatalf("ends after move = %+v %+v", w.End1, w.End2)
	}
	if w.Segments != 5 || w.LengthM != 10 {
		t.Fatalf("translation changed geometry: %d segments, %v m", w.Segments, w.LengthM)
	}

	resp = doJSON(t, s.App(), http.MethodPost, "/v1/documents/"+doc.DocumentID+"/wires/99/move",
		map[string]any{"dx": 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown wire status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSplitWireAssignsFreshTags(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))

	resp := doJSON(t, s.App(), http.MethodPost, "/v1/documents/"+doc.DocumentID+"/wires/1/split", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		First  wireDTO `json:"first"`
		Second wireDTO `json:"second"`
	}
	decodeInto(t, resp, &out)
	if out.First.Tag != 2 || out.Second.Tag != 3 {
		t.Fatalf("tags = %d/%d, want fresh 2/3", out.First.Tag, out.Second.Tag)
	}
	if out.First.LengthM != 5 || out.Second.LengthM != 5 {
		t.Fatalf("half lengths = %v/%v, want 5/5", out.First.LengthM, out.Second.LengthM)
	}
	if out.First.Segments != 5 || out.Second.Segments != 5 {
		t.Fatalf("half segments = %d/%d, want the 5-segment floor", out.First.Segments, out.Second.Segments)
	}
	if !out.First.Selected || !out.Second.Selected {
		t.Fatal("split halves should be selected")
	}

	got := getDocument(t, s, doc.DocumentID)
	if len(got.Wires) != 2 {
		t.Fatalf("wires = %d, want 2", len(got.Wires))
	}
	if len(got.Selection) != 2 || got.Selection[0] != 2 || got.Selection[1] != 3 {
		t.Fatalf("selection = %v, want [2 3]", got.Selection)
	}
	// The feed follows the first half and recentres.
	if got.Excitations[0].WireTag != 2 || got.Excitations[0].Segment != 3 {
		t.Fatalf("feed = %+v, want wire 2 segment 3", got.Excitations[0])
	}

	resp = doJSON(t, s.App(), http.MethodPost, "/v1/documents/"+doc.DocumentID+"/wires/99/split", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown wire status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteWiresAndSelected(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))
	addWire(t, s, doc.DocumentID, point(0, 0, 12), point(10, 0, 12))
	addWire(t, s, doc.DocumentID, point(0, 0, 14), point(10, 0, 14))

	resp := doJSON(t, s.App(), http.MethodDelete, "/v1/documents/"+doc.DocumentID+"/wires",
		map[string]any{"tags": []int{1, 3, 99}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var del struct {
		Removed []int `json:"removed"`
	}
	decodeInto(t, resp, &del)
	if len(del.Removed) != 2 || del.Removed[0] != 1 || del.Removed[1] != 3 {
		t.Fatalf("removed = %v, want [1 3]", del.Removed)
	}

	resp = doJSON(t, s.App(), http.MethodDelete, "/v1/documents/"+doc.DocumentID+"/wires",
		map[string]any{"tags": []int{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty tags status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, s.App(), http.MethodPut, "/v1/documents/"+doc.DocumentID+"/selection",
		map[string]any{"op": "select", "tag": 2})
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodDelete, "/v1/documents/"+doc.DocumentID+"/wires/selected", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete selected status = %d, want 200", resp.StatusCode)
	}
	decodeInto(t, resp, &del)
	if len(del.Removed) != 1 || del.Removed[0] != 2 {
		t.Fatalf("removed = %v, want [2]", del.Removed)
	}
	if got := getDocument(t, s, doc.DocumentID); len(got.Wires) != 0 {
		t.Fatalf("wires = %d, want 0", len(got.Wires))
	}
}

func TestSelectionOps(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))
	addWire(t, s, doc.DocumentID, point(0, 0, 12), point(10, 0, 12))

	selPath := "/v1/documents/" + doc.DocumentID + "/selection"
	sel := func(body map[string]any) []int {
		t.Helper()
		resp := doJSON(t, s.App(), http.MethodPut, selPath, body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("selection %v status = %d, want 200", body, resp.StatusCode)
		}
		var out struct {
			Selection []int `json:"selection"`
		}
		decodeInto(t, resp, &out)
		return out.Selection
	}

	if got := sel(map[string]any{"op": "select", "tag": 1}); len(got) != 1 || got[0] != 1 {
		t.Fatalf("select 1 = %v", got)
	}
	if got := sel(map[string]any{"op": "select", "tag": 2, "additive": true}); len(got) != 2 {
		t.Fatalf("additive select = %v, want [1 2]", got)
	}
	if got := sel(map[string]any{"op": "toggle", "tag": 1}); len(got) != 1 || got[0] != 2 {
		t.Fatalf("toggle off = %v, want [2]", got)
	}
	if got := sel(map[string]any{"op": "select", "tag": 1}); len(got) != 1 || got[0] != 1 {
		t.Fatalf("plain select should replace: %v", got)
	}
	if got := sel(map[string]any{"op": "all"}); len(got) != 2 {
		t.Fatalf("select all = %v", got)
	}
	if got := sel(map[string]any{"op": "clear"}); len(got) != 0 {
		t.Fatalf("clear = %v", got)
	}

	resp := doJSON(t, s.App(), http.MethodPut, selPath, map[string]any{"op": "grow"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown op status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodPut, selPath, map[string]any{"op": "select", "tag": 99})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown tag status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUndoRedoOverHTTP(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	base := "/v1/documents/" + doc.DocumentID

	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))
	resp := doJSON(t, s.App(), http.MethodPut, base+"/frequency", map[string]any{"mhz": 21})
	resp.Body.Close()

	got := getDocument(t, s, doc.DocumentID)
	if got.UndoDepth != 2 {
		t.Fatalf("undo depth = %d, want 2", got.UndoDepth)
	}

	undo := func() bool {
		t.Helper()
		resp := doJSON(t, s.App(), http.MethodPost, base+"/undo", nil)
		var out struct {
			Applied bool `json:"applied"`
		}
		decodeInto(t, resp, &out)
		return out.Applied
	}
	redo := func() bool {
		t.Helper()
		resp := doJSON(t, s.App(), http.MethodPost, base+"/redo", nil)
		var out struct {
			Applied bool `json:"applied"`
		}
		decodeInto(t, resp, &out)
		return out.Applied
	}

	if !undo() {
		t.Fatal("first undo not applied")
	}
	got = getDocument(t, s, doc.DocumentID)
	if got.FrequencyMHz != 14.1 || len(got.Wires) != 1 {
		t.Fatalf("after undo: freq=%v wires=%d, want 14.1/1", got.FrequencyMHz, len(got.Wires))
	}
	if !undo() {
		t.Fatal("second undo not applied")
	}
	if got = getDocument(t, s, doc.DocumentID); len(got.Wires) != 0 {
		t.Fatalf("after second undo wires = %d, want 0", len(got.Wires))
	}
	if undo() {
		t.Fatal("undo on empty history reported applied")
	}

	if !redo() {
		t.Fatal("redo not applied")
	}
	got = getDocument(t, s, doc.DocumentID)
	if len(got.Wires) != 1 || got.FrequencyMHz != 14.1 {
		t.Fatalf("after redo: freq=%v wires=%d, want 14.1/1", got.FrequencyMHz, len(got.Wires))
	}
	if !redo() {
		t.Fatal("second redo not applied")
	}
	if got = getDocument(t, s, doc.DocumentID); got.FrequencyMHz != 21 {
		t.Fatalf("after second redo freq = %v, want 21", got.FrequencyMHz)
	}

	// Any undo empties the selection.
	resp = doJSON(t, s.App(), http.MethodPut, base+"/selection", map[string]any{"op": "select", "tag": 1})
	resp.Body.Close()
	undo()
	if got = getDocument(t, s, doc.DocumentID); len(got.Selection) != 0 {
		t.Fatalf("selection after undo = %v, want empty", got.Selection)
	}
}

func TestExcitationEndpoints(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	base := "/v1/documents/" + doc.DocumentID
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))
	addWire(t, s, doc.DocumentID, point(0, 0, 12), point(10, 0, 12))

	resp := doJSON(t, s.App(), http.MethodPut, base+"/excitation",
		map[string]any{"wire_tag": 2, "segment": 1, "voltage_re": 2, "voltage_im": 0.5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set excitation status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Excitations []excitationDTO `json:"excitations"`
	}
	decodeInto(t, resp, &out)
	if len(out.Excitations) != 2 {
		t.Fatalf("excitations = %d, want the auto feed plus the new one", len(out.Excitations))
	}

	resp = doJSON(t, s.App(), http.MethodPut, base+"/excitation",
		map[string]any{"wire_tag": 1, "segment": 99, "voltage_re": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out-of-range segment status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodPut, base+"/excitation",
		map[string]any{"wire_tag": 99, "segment": 1, "voltage_re": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown wire status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, s.App(), http.MethodDelete, base+"/excitation/1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodDelete, base+"/excitation/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	got := getDocument(t, s, doc.DocumentID)
	if len(got.Excitations) != 1 || got.Excitations[0].WireTag != 2 {
		t.Fatalf("excitations = %+v, want only wire 2", got.Excitations)
	}
}

func TestLoadAndLineEndpoints(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	base := "/v1/documents/" + doc.DocumentID
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))
	addWire(t, s, doc.DocumentID, point(0, 0, 12), point(10, 0, 12))

	resp := doJSON(t, s.App(), http.MethodPost, base+"/loads",
		map[string]any{"wire_tag": 1, "segment": 2, "resistance_ohms": 50})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add load status = %d, want 201", resp.StatusCode)
	}
	var loads struct {
		Loads []loadDTO `json:"loads"`
	}
	decodeInto(t, resp, &loads)
	if len(loads.Loads) != 1 || loads.Loads[0].ResistanceOhms != 50 {
		t.Fatalf("loads = %+v", loads.Loads)
	}

	resp = doJSON(t, s.App(), http.MethodPost, base+"/loads",
		map[string]any{"wire_tag": 99, "segment": 1, "resistance_ohms": 50})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad load status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, s.App(), http.MethodPost, base+"/lines",
		map[string]any{"tag1": 1, "segment1": 3, "tag2": 2, "segment2": 3, "impedance_ohms": 450, "length_m": 10})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add line status = %d, want 201", resp.StatusCode)
	}
	var lines struct {
		Lines []lineDTO `json:"transmission_lines"`
	}
	decodeInto(t, resp, &lines)
	if len(lines.Lines) != 1 || lines.Lines[0].ImpedanceOhms != 450 {
		t.Fatalf("lines = %+v", lines.Lines)
	}

	resp = doJSON(t, s.App(), http.MethodDelete, base+"/loads/0", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove load status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodDelete, base+"/loads/0", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remove missing load status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodDelete, base+"/lines/0", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove line status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodDelete, base+"/lines/0", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remove missing line status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestApplyTemplateOverHTTP(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	base := "/v1/documents/" + doc.DocumentID

	resp := doJSON(t, s.App(), http.MethodPost, base+"/template",
		map[string]any{"kind": "dipole", "frequency_mhz": 14.1, "height_m": 10})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, readBody(t, resp))
	}
	got := decodeDoc(t, resp)
	if len(got.Wires) != 1 {
		t.Fatalf("wires = %d, want 1", len(got.Wires))
	}
	w := got.Wires[0]
	if w.Segments != 5 {
		t.Fatalf("segments = %d, want 5", w.Segments)
	}
	if math.Abs(w.LengthM-10.1064) > 1e-3 {
		t.Fatalf("length = %v, want about 10.106 m for a 20 m band dipole", w.LengthM)
	}
	if len(got.Excitations) != 1 || got.Excitations[0].Segment != 3 {
		t.Fatalf("feed = %+v, want centre segment 3", got.Excitations)
	}

	resp = doJSON(t, s.App(), http.MethodPost, base+"/template",
		map[string]any{"kind": "ground-plane", "frequency_mhz": 14.1, "radials": 4})
	got = decodeDoc(t, resp)
	if len(got.Wires) != 5 {
		t.Fatalf("ground plane wires = %d, want radiator plus 4 radials", len(got.Wires))
	}

	// A template lands as one undoable step.
	resp = doJSON(t, s.App(), http.MethodPost, base+"/undo", nil)
	resp.Body.Close()
	if got = getDocument(t, s, doc.DocumentID); len(got.Wires) != 1 {
		t.Fatalf("after undo wires = %d, want the dipole back", len(got.Wires))
	}

	resp = doJSON(t, s.App(), http.MethodPost, base+"/template", map[string]any{"kind": "moxon", "frequency_mhz": 14.1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown kind status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
	resp = doJSON(t, s.App(), http.MethodPost, base+"/template", map[string]any{"kind": "dipole"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing frequency status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClearDocument(t *testing.T) {
	s, _ := newTestServer(t, "")
	doc := createDocument(t, s.App(), 14.1)
	addWire(t, s, doc.DocumentID, point(0, 0, 10), point(10, 0, 10))

	resp := doJSON(t, s.App(), http.MethodPost, "/v1/documents/"+doc.DocumentID+"/clear", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeDoc(t, resp)
	if len(got.Wires) != 0 || len(got.Excitations) != 0 {
		t.Fatalf("cleared document still has content: %+v", got)
	}
	if !got.CanUndo {
		t.Fatal("clear should be undoable")
	}
}
