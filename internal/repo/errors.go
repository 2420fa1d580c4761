package repo

import "errors"

// ErrNotFound: ноль затронутых/выбранных строк. Сюда же попадает «не ваше»
// (чужая ферма, неверный ключ), снаружи эти случаи не различаются.
var ErrNotFound = errors.New("not found")
