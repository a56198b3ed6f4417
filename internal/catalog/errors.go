package catalog

import "github.com/pezzottify/catalog-server/internal/apierr"

func errReferenceNotFound(kind, id string) *apierr.Error {
	return apierr.Conflict("referenced "+kind+" not found", "reference_not_found:"+kind+":"+id)
}

func errNotFound(kind, id string) *apierr.Error {
	return apierr.NotFound(kind + " not found: " + id)
}

func errDuplicateID(kind, id string) *apierr.Error {
	return apierr.Conflict(kind+" id already exists", "duplicate_id:"+id)
}

func errDuplicateTrackPosition() *apierr.Error {
	return apierr.Conflict("track (album_id, disc, track_number) already in use", "duplicate_track_position")
}

func errEmptyArtists() *apierr.Error {
	return apierr.ValidationFailure("album must have at least one artist")
}

func errNoPrimaryArtist() *apierr.Error {
	return apierr.ValidationFailure("album must have at least one primary artist")
}

func errSelfRelatedArtist() *apierr.Error {
	return apierr.ValidationFailure("artist cannot be related to itself")
}

func errConflictHasDependents(kind, id string) *apierr.Error {
	return apierr.Conflict(kind+" has dependent albums or tracks", "has_dependents:"+id)
}
