package checkout

import "errors"

var (
	ErrEmptyCart     = errors.New("panier vide")
	ErrOrderNotFound = errors.New("commande introuvable")
	ErrUserNotFound  = errors.New("utilisateur introuvable")
)
