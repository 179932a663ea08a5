package runtime

import (
	"fmt"
	"html/template"
	"strings"
)

// HMRPath is where the hot server accepts websocket clients.
const HMRPath = "/__lux_hmr"

// GetRefreshScript returns an inline script that reloads the page whenever
// the hot server reports a rebuild, or "" when no hot server is running.
func (r *Runtime) GetRefreshScript() template.HTML {
	hotURL, ok := r.HotURL()
	if !ok {
		return ""
	}
	wsURL := strings.Replace(hotURL, "http", "ws", 1) + HMRPath
	return template.HTML("<script>\n" + fmt.Sprintf(refreshScriptFmt, wsURL) + "\n</script>")
}

// message types: "rebuilt", "error"
const refreshScriptFmt = `
const scrollYKey = "__lux_devScrollY";
const scrollY = localStorage.getItem(scrollYKey);
if (scrollY) {
	setTimeout(() => {
		localStorage.removeItem(scrollYKey);
		window.scrollTo({ top: scrollY, behavior: "smooth" });
	}, 150);
}

const ws = new WebSocket(%q);

ws.onmessage = (e) => {
	const { type, error } = JSON.parse(e.data);
	if (type == "rebuilt") {
		if (window.scrollY > 0) {
			localStorage.setItem(scrollYKey, window.scrollY);
		}
		window.location.reload();
	}
	if (type == "error") {
		console.error("LUX HOT: build failed\n" + error);
	}
};

ws.onclose = () => {
	console.info("LUX HOT: connection closed");
};
`
