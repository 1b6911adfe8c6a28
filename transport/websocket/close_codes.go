package websocket

import "nhooyr.io/websocket"

// Close codes that signal an ordinary end of the connection rather than a
// failure. Anything else is surfaced through OnError before OnClose.
var expectedCloseCodes = []websocket.StatusCode{
	websocket.StatusNormalClosure,
	websocket.StatusGoingAway,
	websocket.StatusNoStatusRcvd,
	websocket.StatusAbnormalClosure,
}

func isExpectedCloseCode(code websocket.StatusCode) bool {
	for _, expected := range expectedCloseCodes {
		if code == expected {
			return true
		}
	}
	return false
}
