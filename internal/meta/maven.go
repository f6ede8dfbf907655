package meta

import "strings"

// CoordinatePath maps a Maven coordinate "group:artifact:version[:classifier]"
// to its repository relative path. A trailing "@ext" on the last part picks
// the file extension. Coordinates with fewer than three parts are returned
// unchanged.
func CoordinatePath(coord string) string {
	ext := "jar"
	name := coord
	if i := strings.LastIndex(coord, "@"); i > 0 {
		name, ext = coord[:i], coord[i+1:]
	}

	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return coord
	}

	group := strings.ReplaceAll(parts[0], ".", "/")
	artifact, version := parts[1], parts[2]

	file := artifact + "-" + version
	if len(parts) > 3 && parts[3] != "" {
		file += "-" + parts[3]
	}
	return group + "/" + artifact + "/" + version + "/" + file + "." + ext
}
