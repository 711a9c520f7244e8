package flow

import "testing"

func TestActionCodec(t *testing.T) {
	cases := []Action{
		{Kind: ActionMainMenu},
		{Kind: ActionOpenEmergency},
		{Kind: ActionOpenConsultation},
		{Kind: ActionAbout},
		{Kind: ActionCancel},
		{Kind: ActionBack},
		Choose("В течение недели"),
	}
	for _, a := range cases {
		data := EncodeAction(a)
		if len(data) > 64 {
			t.Fatalf("callback data too long for telegram: %q", data)
		}
		if got := DecodeAction(data); got != a {
			t.Fatalf("decode(%q) = %+v, want %+v", data, got, a)
		}
	}
}

func TestDecodeAction_Unknown(t *testing.T) {
	for _, data := range []string{"", "approve_1", "c:", "menu2"} {
		if got := DecodeAction(data); got.Kind != ActionUnknown {
			t.Fatalf("decode(%q) = %+v, want unknown", data, got)
		}
	}
}

func TestNavAction(t *testing.T) {
	if a, ok := NavAction(buttonCancel.Label); !ok || a.Kind != ActionCancel {
		t.Fatalf("cancel label not recognized: %+v %v", a, ok)
	}
	if a, ok := NavAction(buttonBack.Label); !ok || a.Kind != ActionBack {
		t.Fatalf("back label not recognized: %+v %v", a, ok)
	}
	if _, ok := NavAction("Москва"); ok {
		t.Fatal("plain text must not map to an action")
	}
}
