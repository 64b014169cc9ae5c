package icons

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		code int
		want Icon
	}{
		{code: 1000, want: IconClearDay},
		{code: 3200, want: IconClearDay},
		{code: 1183, want: IconRain},
		{code: 2001, want: IconRain},
		{code: 1276, want: IconRain},
		{code: 1087, want: IconThunderstorms},
		{code: 1213, want: IconSnow},
		{code: 1282, want: IconSnow},
		{code: 1135, want: IconFog},
		{code: 1147, want: IconFog},
		{code: 1006, want: IconCloudy},
		{code: 1030, want: IconCloudy},
		{code: 1003, want: IconPartlyCloudyDay},
		{code: 9999, want: IconUndefined},
		{code: 0, want: IconUndefined},
		{code: -1, want: IconUndefined},
	}

	for _, tt := range tests {
		if got := Classify(tt.code); got != tt.want {
			t.Errorf("Classify(%d) = %q; want %q", tt.code, got, tt.want)
		}
	}
}

func TestIcon_Defined(t *testing.T) {
	if Classify(9999).Defined() {
		t.Error("Classify(9999).Defined() = true; want false")
	}
	if !Classify(1000).Defined() {
		t.Error("Classify(1000).Defined() = false; want true")
	}
}

func TestClassify_EveryKnownCodeHasTag(t *testing.T) {
	allowed := map[Icon]bool{
		IconClearDay: true, IconRain: true, IconThunderstorms: true, IconSnow: true,
		IconFog: true, IconCloudy: true, IconPartlyCloudyDay: true,
	}
	for code, icon := range byCode {
		if !allowed[icon] {
			t.Errorf("code %d maps to unexpected icon %q", code, icon)
		}
	}
}
