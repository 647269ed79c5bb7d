// Package footer renderiza o rodapé estático da página de apostas
package footer

import (
	"strconv"

	"github.com/radieske/betting-list/internal/betting/view"
)

// Render devolve a visão fixa do rodapé conforme o usuário está conectado ou não
func Render(isUserConnected bool) view.Node {
	root := view.El("div", "footer")
	root.ID = "footer"
	root.Attrs = map[string]string{"is-user-connected": strconv.FormatBool(isUserConnected)}

	msg := view.El("p")
	action := view.El("a", "footer__action")
	if isUserConnected {
		msg.Text = "Connected"
		action.Attrs = map[string]string{"href": "/logout"}
		action.Text = "Log out"
	} else {
		msg.Text = "Not connected"
		action.Attrs = map[string]string{"href": "/login"}
		action.Text = "Log in"
	}

	root.Children = []view.Node{msg, action}
	return root
}
