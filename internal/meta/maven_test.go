package meta

import (
	"encoding/json"
	"testing"
)

func TestCoordinatePath(t *testing.T) {
	tests := []struct {
		coord    string
		expected string
	}{
		{"org.example:lib:1.0", "org/example/lib/1.0/lib-1.0.jar"},
		{"org.example:lib:1.0:natives-linux", "org/example/lib/1.0/lib-1.0-natives-linux.jar"},
		{"net.fabricmc:fabric-loader:0.16.9", "net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar"},
		{"org.ow2.asm:asm:9.6", "org/ow2/asm/asm/9.6/asm-9.6.jar"},
		{"com.example:pack:2.0@zip", "com/example/pack/2.0/pack-2.0.zip"},
		{"org.example:lib", "org.example:lib"},
		{"justaname", "justaname"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			if got := CoordinatePath(tt.coord); got != tt.expected {
				t.Errorf("CoordinatePath(%q) = %q, want %q", tt.coord, got, tt.expected)
			}
		})
	}
}

func TestNativeClassifier(t *testing.T) {
	const doc = `{
		"name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
		"natives": {"linux": "natives-linux", "windows": "natives-windows-${arch}"},
		"downloads": {
			"classifiers": {
				"natives-linux": {"path": "l.jar", "url": "https://example.test/l.jar"},
				"natives-windows-64": {"path": "w64.jar", "url": "https://example.test/w64.jar"}
			}
		}
	}`
	var lib Library
	if err := json.Unmarshal([]byte(doc), &lib); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if art, ok := lib.NativeClassifier("windows", "64"); !ok || art.Path != "w64.jar" {
		t.Errorf("windows/64 = %+v, %v", art, ok)
	}
	if _, ok := lib.NativeClassifier("windows", "32"); ok {
		t.Error("windows/32 has no classifier and should not resolve")
	}
	if art, ok := lib.NativeClassifier("linux", "64"); !ok || art.Path != "l.jar" {
		t.Errorf("linux = %+v, %v", art, ok)
	}
	if _, ok := lib.NativeClassifier("osx", "64"); ok {
		t.Error("osx has no natives entry")
	}
	if lib.Artifact() != nil {
		t.Error("library without artifact returned one")
	}
}

func TestIsNativeArtifact(t *testing.T) {
	if !(Library{Name: "org.lwjgl:lwjgl:3.3.2:natives-linux"}).IsNativeArtifact() {
		t.Error("natives-linux classifier not detected")
	}
	if (Library{Name: "org.lwjgl:lwjgl:3.3.2"}).IsNativeArtifact() {
		t.Error("plain artifact detected as native")
	}
}

func TestAssetObjectPath(t *testing.T) {
	obj := AssetObject{Hash: "bdf48ef6b5d0d23bbb02e17d04865216179f510a"}
	if got := obj.ObjectPath(); got != "bd/bdf48ef6b5d0d23bbb02e17d04865216179f510a" {
		t.Errorf("ObjectPath() = %q", got)
	}
}
