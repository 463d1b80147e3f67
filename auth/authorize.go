package auth

// AnonymousID is the principal id of an unauthenticated request.
const AnonymousID = 0

// CanMutate decides whether the principal may mutate a resource owned by
// ownerID. The rule is exact ownership; an anonymous principal never passes.
func CanMutate(principalID, ownerID int) bool {
	return principalID != AnonymousID && principalID == ownerID
}
