package sqlinline

// Schema is applied by cmd/storemigrate.
const Schema = `
create table if not exists viaqris_documents (
	name       text primary key,
	content    jsonb not null default '{}'::jsonb,
	version    text not null,
	message    text not null default '',
	updated_at timestamptz not null default now()
);
`

const QSelectDocument = `--sql de5b974b-635c-4128-8776-1534cae27bac
select content::text, version
from viaqris_documents
where name = $1::text;
`

const QInsertDocument = `--sql 69cc59d3-298a-4b78-9dff-e66e62d1668e
insert into viaqris_documents(name, content, version, message, updated_at)
values ($1::text, $2::jsonb, $3::text, $4::text, now())
on conflict (name) do nothing;
`

const QUpdateDocument = `--sql fcc3848b-f90a-4e8e-abf0-9e9eee423f80
update viaqris_documents
set content = $2::jsonb, version = $3::text, message = $4::text, updated_at = now()
where name = $1::text and version = $5::text;
`
