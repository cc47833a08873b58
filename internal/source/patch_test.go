package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePatch = `diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ -1,2 +1,2 @@
 package a
-var x = 1
+var x = 2
diff --git a/new.txt b/new.txt
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/new.txt
@@ -0,0 +1 @@
+hello
diff --git a/gone.txt b/gone.txt
deleted file mode 100644
index 4444444..0000000
--- a/gone.txt
+++ /dev/null
@@ -1 +0,0 @@
-bye
diff --git a/old.go b/renamed.go
similarity index 100%
rename from old.go
rename to renamed.go
diff --git a/img.png b/img.png
index 5555555..6666666 100644
Binary files a/img.png and b/img.png differ
`

func TestParsePatchFiles(t *testing.T) {
	files, err := ParsePatchFiles([]byte(samplePatch))
	require.NoError(t, err)
	require.Len(t, files, 5)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	require.Equal(t, []string{"a.go", "new.txt", "gone.txt", "renamed.go", "img.png"}, paths)

	require.Equal(t, PatchFile{Path: "a.go", Hunks: 1}, files[0])
	require.True(t, files[1].Added)
	require.False(t, files[1].Deleted)
	require.True(t, files[2].Deleted)
	require.Equal(t, "old.go", files[3].OrigPath)
	require.True(t, files[4].Binary)
}

const sidePrefixPatch = `diff --git a/b/main.go b/b/main.go
index 1111111..2222222 100644
--- a/b/main.go
+++ b/b/main.go
@@ -1 +1 @@
-package b
+package main
diff --git a/b/gone.go b/b/gone.go
deleted file mode 100644
index 3333333..0000000
--- a/b/gone.go
+++ /dev/null
@@ -1 +0,0 @@
-package b
diff --git a/a/new.go b/a/new.go
new file mode 100644
index 0000000..4444444
--- /dev/null
+++ b/a/new.go
@@ -0,0 +1 @@
+package a
`

func TestParsePatchFilesKeepsTopLevelSideNamedDirs(t *testing.T) {
	files, err := ParsePatchFiles([]byte(sidePrefixPatch))
	require.NoError(t, err)
	require.Len(t, files, 3)

	require.Equal(t, PatchFile{Path: "b/main.go", Hunks: 1}, files[0])
	require.Equal(t, PatchFile{Path: "b/gone.go", Deleted: true, Hunks: 1}, files[1])
	require.Equal(t, PatchFile{Path: "a/new.go", Added: true, Hunks: 1}, files[2])
}

func TestParsePatchFilesEmpty(t *testing.T) {
	files, err := ParsePatchFiles(nil)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestPathFromGitHeader(t *testing.T) {
	require.Equal(t, "dir/x y.go", pathFromGitHeader("diff --git a/dir/x y.go b/dir/x y.go"))
	require.Equal(t, "", pathFromGitHeader("index 123..456"))
}
